package models

// Account is a row in the remote users table. Field tags follow the remote
// schema's display names, which the row API exposes verbatim.
//
// Devices holds the raw device registry text: a concatenation of flat JSON
// device descriptors with no separator. internal/device owns that format.
type Account struct {
	ID          int    `json:"id"`
	Name        string `json:"Nome"`
	Email       string `json:"Email"`
	Password    string `json:"Senha"`
	Date        string `json:"Data"`
	Payment     string `json:"Pagamento"`
	Today       string `json:"Hoje"`
	PlanDays    int    `json:"Dias"`
	DeviceLimit int    `json:"Logins"`
	Devices     string `json:"IMEI"`
	Remaining   string `json:"Restam"`
}

// Content is a row in the remote contents table. Favorites and History are
// single text cells holding concatenated {"id":"<email>"} fragments.
type Content struct {
	ID        int    `json:"id"`
	Name      string `json:"Nome"`
	Cover     string `json:"Capa"`
	Synopsis  string `json:"Sinopse"`
	Category  string `json:"Categoria"`
	Views     int    `json:"Views"`
	Type      string `json:"Tipo"`
	Date      string `json:"Data"`
	Link      string `json:"Link"`
	Language  string `json:"Idioma"`
	Favorites string `json:"Favoritos"`
	Seasons   int    `json:"Temporadas"`
	History   string `json:"Histórico"`
	Edited    string `json:"Edição"`
}

// Content type values used by the remote schema.
const (
	TypeMovie  = "Filme"
	TypeSeries = "Serie"
	TypeTV     = "TV"
)

// Episode is a row in the remote episodes table, linked to its series by name.
type Episode struct {
	ID      int    `json:"id"`
	Name    string `json:"Nome"`
	Link    string `json:"Link"`
	Date    string `json:"Data"`
	Season  int    `json:"Temporada"`
	Number  int    `json:"Episódio"`
	History string `json:"Histórico"`
	Views   int    `json:"Views"`
}

// Banner is a row in the remote banners table. ContentID links to a content
// row when the banner is internal; Link is used when External is set.
type Banner struct {
	ID        int    `json:"id"`
	Name      string `json:"Nome"`
	Image     string `json:"Imagem"`
	ContentID int    `json:"ID"`
	Link      string `json:"Link"`
	External  bool   `json:"Externo?"`
	Date      string `json:"Data"`
	Category  string `json:"Categoria"`
}

// Category is a row in the remote categories table.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"Nome"`
}
