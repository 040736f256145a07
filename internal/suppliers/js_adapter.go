package suppliers

import (
	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/internal/suppliers/payload"
	"goproductsync_api/pkg/business/service"
)

// JSAdapter нормализует фид поставщика JS: плоский JSON-объект с
// slash-разделённым путём категорий и комбинациями цвет/размер в поле
// combinations, которое встречается и как объект, и как массив.
type JSAdapter struct {
	prices *services.PriceEngine
	text   service.ITextService
	values values.SyncValues
}

func NewJSAdapter(prices *services.PriceEngine, text service.ITextService, v values.SyncValues) *JSAdapter {
	return &JSAdapter{prices: prices, text: text, values: v}
}

func (a *JSAdapter) Normalize(record *models.RawFeedRecord) (*models.CanonicalProduct, error) {
	doc, err := payload.Parse(record.Payload)
	if err != nil || doc == nil {
		return &models.CanonicalProduct{}, nil
	}

	product := &models.CanonicalProduct{
		SKU:            record.SKU,
		Name:           doc.String("name", record.SKU),
		Brand:          doc.String("brand", record.Brand),
		Description:    a.text.ClearAndReduce(doc.String("description", ""), a.values.DescriptionLimit),
		WholesalePrice: doc.Float("price"),
		Categories:     SplitCategoryPath(doc.String("categories", ""), "/"),
		Images:         collectImages(doc, "images", "src"),
		Meta: map[string]string{
			"_wholesaler": string(models.WholesalerJS),
		},
	}
	product.RegularPrice = a.prices.RegularPrice(product.Brand, product.WholesalePrice)

	collector := newOptionCollector()
	combinations := doc.List("combinations")
	for _, combination := range combinations {
		collector.Add("Color", combination.String("color", ""))
		collector.Add("Size", combination.String("size", ""))
	}
	product.Attributes = collector.Attributes()

	for _, combination := range combinations {
		code := combination.String("code", "")
		color := combination.String("color", "")
		size := combination.String("size", "")
		if code == "" && color == "" && size == "" {
			// без идентифицирующих данных стабильный SKU не построить
			continue
		}

		wholesale := combination.Float("price")
		if wholesale == 0 {
			wholesale = product.WholesalePrice
		}
		stock := combination.Int("stock")
		if stock < 0 {
			stock = 0
		}

		variation := models.Variation{
			SKU:            DeriveVariationSKU(a.text, record.SKU, code, []string{color, size}),
			StockQuantity:  stock,
			WholesalePrice: wholesale,
			RegularPrice:   a.prices.RegularPrice(product.Brand, wholesale),
			Meta: map[string]string{
				"_source_code": code,
			},
		}
		if color != "" {
			variation.Attributes = append(variation.Attributes, models.VariationAttribute{Name: "Color", Option: color})
		}
		if size != "" {
			variation.Attributes = append(variation.Attributes, models.VariationAttribute{Name: "Size", Option: size})
		}
		product.Variations = append(product.Variations, variation)
	}

	return product, nil
}

// collectImages разворачивает одиночный объект, массив объектов или голые
// строки в упорядоченный список изображений.
func collectImages(doc payload.Document, key, srcKey string) []models.Image {
	var images []models.Image
	for _, value := range doc.Values(key) {
		switch v := value.(type) {
		case string:
			if v != "" {
				images = append(images, models.Image{Src: v})
			}
		case map[string]interface{}:
			if src := payload.Document(v).String(srcKey, ""); src != "" {
				images = append(images, models.Image{Src: src})
			}
		}
	}
	return images
}
