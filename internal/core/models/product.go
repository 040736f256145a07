package models

// CanonicalProduct представляет товар в канонической форме, единой для всех
// поставщиков. Адаптеры приводят сырые фиды к этой структуре, а движок сверки
// потребляет её без знания об исходной схеме.
// Заполняется один раз при нормализации и далее не мутируется в рамках прохода.
type CanonicalProduct struct {
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand"`
	Description    string            `json:"description"`
	WholesalePrice float64           `json:"wholesale_price"`
	RegularPrice   string            `json:"regular_price"`
	Images         []Image           `json:"images"`
	Categories     []string          `json:"categories"`
	Attributes     []Attribute       `json:"attributes"`
	Variations     []Variation       `json:"variations"`
	Meta           map[string]string `json:"meta"`
}

// Empty reports whether normalization produced nothing importable.
func (p *CanonicalProduct) Empty() bool {
	return p == nil || p.SKU == ""
}

type Image struct {
	Src string `json:"src"`
}

// Attribute описывает характеристику товара. Variation=true означает, что
// по значениям этой характеристики строятся вариации (цвет, размер и т.п.).
type Attribute struct {
	Name      string   `json:"name"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// Variation — конкретная комбинация значений вариационных характеристик.
// SKU детерминированно выводится из родительского SKU, кода поставщика и
// значений характеристик, поэтому повторная нормализация даёт тот же SKU.
type Variation struct {
	SKU            string               `json:"sku"`
	Attributes     []VariationAttribute `json:"attributes"`
	StockQuantity  int                  `json:"stock_quantity"`
	RegularPrice   string               `json:"regular_price"`
	WholesalePrice float64              `json:"wholesale_price"`
	Meta           map[string]string    `json:"meta"`
}

type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}
