package suppliers

import (
	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/internal/suppliers/payload"
	"goproductsync_api/pkg/business/service"
)

// MADAAdapter нормализует фид MADA — XML, сконвертированный в JSON.
// Все повторяемые узлы (IMAGES.IMAGE, MODELS.MODEL, SIZES.SIZE) в таком
// документе встречаются и как одиночный объект, и как массив; обе кодировки
// обязаны давать одинаковый результат.
type MADAAdapter struct {
	prices *services.PriceEngine
	text   service.ITextService
	values values.SyncValues
}

func NewMADAAdapter(prices *services.PriceEngine, text service.ITextService, v values.SyncValues) *MADAAdapter {
	return &MADAAdapter{prices: prices, text: text, values: v}
}

func (a *MADAAdapter) Normalize(record *models.RawFeedRecord) (*models.CanonicalProduct, error) {
	doc, err := payload.Parse(record.Payload)
	if err != nil || doc == nil {
		return &models.CanonicalProduct{}, nil
	}
	if root := doc.Child("PRODUCT"); root != nil {
		doc = root
	}

	product := &models.CanonicalProduct{
		SKU:            record.SKU,
		Name:           doc.String("NAME", record.SKU),
		Brand:          doc.String("BRAND", record.Brand),
		Description:    a.text.ClearAndReduce(doc.String("DESC", ""), a.values.DescriptionLimit),
		WholesalePrice: doc.Float("PRICE"),
		Categories:     SplitCategoryPath(doc.String("CATEGORY", ""), "|"),
		Meta: map[string]string{
			"_wholesaler": string(models.WholesalerMADA),
		},
	}
	product.RegularPrice = a.prices.RegularPrice(product.Brand, product.WholesalePrice)

	if imagesNode := doc.Child("IMAGES"); imagesNode != nil {
		product.Images = collectImages(imagesNode, "IMAGE", "URL")
	}

	var productModels []payload.Document
	if modelsNode := doc.Child("MODELS"); modelsNode != nil {
		productModels = modelsNode.List("MODEL")
	}

	collector := newOptionCollector()
	for _, model := range productModels {
		collector.Add("Color", model.String("COLOR", ""))
		for _, size := range modelSizes(model) {
			collector.Add("Size", size.String("NAME", ""))
		}
	}
	product.Attributes = collector.Attributes()

	for _, model := range productModels {
		code := model.String("CODE", "")
		color := model.String("COLOR", "")
		sizes := modelSizes(model)

		if len(sizes) == 0 {
			if variation, ok := a.buildVariation(record.SKU, product, code, color, "", model.Float("PRICE"), model.Int("STOCK")); ok {
				product.Variations = append(product.Variations, variation)
			}
			continue
		}

		for _, size := range sizes {
			sizeName := size.String("NAME", "")
			wholesale := size.Float("PRICE")
			if wholesale == 0 {
				wholesale = model.Float("PRICE")
			}
			if variation, ok := a.buildVariation(record.SKU, product, code, color, sizeName, wholesale, size.Int("STOCK")); ok {
				product.Variations = append(product.Variations, variation)
			}
		}
	}

	return product, nil
}

func modelSizes(model payload.Document) []payload.Document {
	sizesNode := model.Child("SIZES")
	if sizesNode == nil {
		return nil
	}
	return sizesNode.List("SIZE")
}

func (a *MADAAdapter) buildVariation(parentSKU string, product *models.CanonicalProduct, code, color, size string, wholesale float64, stock int) (models.Variation, bool) {
	if code == "" && color == "" && size == "" {
		return models.Variation{}, false
	}
	if wholesale == 0 {
		wholesale = product.WholesalePrice
	}
	if stock < 0 {
		stock = 0
	}

	variation := models.Variation{
		SKU:            DeriveVariationSKU(a.text, parentSKU, code, []string{color, size}),
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
	return variation, true
}
