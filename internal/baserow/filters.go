package baserow

import "encoding/json"

// Condition is a single field predicate inside a filter tree.
type Condition struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Equal matches rows whose field equals value exactly.
func Equal(field, value string) Condition {
	return Condition{Type: "equal", Field: field, Value: value}
}

// Contains matches rows whose field contains value as a substring.
func Contains(field, value string) Condition {
	return Condition{Type: "contains", Field: field, Value: value}
}

type filterTree struct {
	FilterType string      `json:"filter_type"`
	Filters    []Condition `json:"filters"`
	Groups     []any       `json:"groups"`
}

// And encodes a conjunction of conditions as the store's filters parameter.
func And(conditions ...Condition) string {
	return encodeTree("AND", conditions)
}

// Or encodes a disjunction of conditions as the store's filters parameter.
func Or(conditions ...Condition) string {
	return encodeTree("OR", conditions)
}

func encodeTree(filterType string, conditions []Condition) string {
	tree := filterTree{
		FilterType: filterType,
		Filters:    conditions,
		Groups:     []any{},
	}
	encoded, err := json.Marshal(tree)
	if err != nil {
		return ""
	}
	return string(encoded)
}
