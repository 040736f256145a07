package request

// Product — элемент батч-запроса каталога. ID заполняется только для update.
type Product struct {
	ID           int64       `json:"id,omitempty"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name,omitempty"`
	Description  string      `json:"description,omitempty"`
	RegularPrice string      `json:"regular_price,omitempty"`
	Images       []Image     `json:"images,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	MetaData     []MetaEntry `json:"meta_data,omitempty"`
}

type Image struct {
	Src string `json:"src"`
}

type Attribute struct {
	Name      string   `json:"name"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductBatch — тело POST /products/batch.
type ProductBatch struct {
	Create []Product `json:"create,omitempty"`
	Update []Product `json:"update,omitempty"`
}

// Variation — элемент батч-запроса вариаций под конкретным товаром.
type Variation struct {
	ID            int64                `json:"id,omitempty"`
	SKU           string               `json:"sku"`
	RegularPrice  string               `json:"regular_price,omitempty"`
	StockQuantity int                  `json:"stock_quantity"`
	Attributes    []VariationAttribute `json:"attributes,omitempty"`
	MetaData      []MetaEntry          `json:"meta_data,omitempty"`
}

type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

// VariationBatch — тело POST /products/{id}/variations/batch.
type VariationBatch struct {
	Create []Variation `json:"create,omitempty"`
	Update []Variation `json:"update,omitempty"`
}

// SKULookup — тело POST /products/lookup.
type SKULookup struct {
	SKUs []string `json:"skus"`
}

// TermsAssignment — тело PUT /products/{id}/terms: привязка таксономии
// после того, как id товара известен.
type TermsAssignment struct {
	Categories []string `json:"categories,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}
