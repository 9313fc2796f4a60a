// Package device owns the device registry micro-format stored in a single
// text cell of the remote users table: a sequence of flat JSON objects
// concatenated with no separator, e.g.
//
//	{"IMEI":"Linux:Mozilla/5.0 ...","Dispositivo":"Linux"}{"IMEI":"Win32:...","Dispositivo":"Win32"}
//
// The remote schema offers no multi-value field type for this column, so the
// client owns the format entirely. Fragments that fail to parse or lack a
// fingerprint are skipped rather than failing the whole decode.
package device

import (
	"encoding/json"
	"regexp"
)

// Descriptor identifies one device registered to an account. Field tags match
// the historical cell format.
type Descriptor struct {
	Fingerprint string `json:"IMEI"`
	Name        string `json:"Dispositivo"`
}

const fingerprintUASpan = 50

// Current derives the calling device's descriptor from its platform and
// user agent. The fingerprint keeps only a truncated user-agent span so that
// minor version bumps do not churn the registry more than necessary.
func Current(platform, userAgent string) Descriptor {
	if platform == "" {
		platform = "Unknown"
	}
	ua := userAgent
	if len(ua) > fingerprintUASpan {
		ua = ua[:fingerprintUASpan]
	}
	return Descriptor{
		Fingerprint: platform + ":" + ua,
		Name:        platform,
	}
}

// Match reports whether two descriptors refer to the same device. Equality is
// deliberately loose: a fingerprint match OR a name match counts, tolerating
// fingerprint drift across browser updates on the same platform.
func Match(a, b Descriptor) bool {
	return a.Fingerprint == b.Fingerprint || a.Name == b.Name
}

// Contains reports whether the registry holds a descriptor matching dev.
func Contains(registry []Descriptor, dev Descriptor) bool {
	for _, d := range registry {
		if Match(d, dev) {
			return true
		}
	}
	return false
}

var fragmentPattern = regexp.MustCompile(`\{[^}]+\}`)

// Decode extracts the ordered device registry from the raw cell text.
// Empty input yields an empty registry; invalid fragments are dropped.
func Decode(raw string) []Descriptor {
	out := []Descriptor{}
	if raw == "" {
		return out
	}
	for _, fragment := range fragmentPattern.FindAllString(raw, -1) {
		var d Descriptor
		if err := json.Unmarshal([]byte(fragment), &d); err != nil {
			continue
		}
		if d.Fingerprint == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Encode serializes the registry back to the cell format, the exact inverse
// of Decode for values free of the "}" substring.
func Encode(registry []Descriptor) string {
	var buf []byte
	for _, d := range registry {
		fragment, err := json.Marshal(d)
		if err != nil {
			continue
		}
		buf = append(buf, fragment...)
	}
	return string(buf)
}
