package suppliers

import (
	"sort"
	"strings"

	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/internal/suppliers/payload"
	"goproductsync_api/pkg/business/service"
)

// ARENAdapter нормализует фид AREN: корень product, путь категорий как
// повторяемый элемент либо одна pipe-разделённая строка, пары
// attributes{name,value} и явные варианты variants{id,attrs,qty,price}.
type ARENAdapter struct {
	prices *services.PriceEngine
	text   service.ITextService
	values values.SyncValues
}

func NewARENAdapter(prices *services.PriceEngine, text service.ITextService, v values.SyncValues) *ARENAdapter {
	return &ARENAdapter{prices: prices, text: text, values: v}
}

func (a *ARENAdapter) Normalize(record *models.RawFeedRecord) (*models.CanonicalProduct, error) {
	doc, err := payload.Parse(record.Payload)
	if err != nil || doc == nil {
		return &models.CanonicalProduct{}, nil
	}
	if root := doc.Child("product"); root != nil {
		doc = root
	}

	product := &models.CanonicalProduct{
		SKU:            record.SKU,
		Name:           doc.String("title", record.SKU),
		Brand:          doc.String("producer", record.Brand),
		Description:    a.text.ClearAndReduce(doc.String("desc", ""), a.values.DescriptionLimit),
		WholesalePrice: doc.Float("price"),
		Categories:     arenCategories(doc),
		Images:         collectImages(doc, "gallery", "url"),
		Meta: map[string]string{
			"_wholesaler": string(models.WholesalerAREN),
		},
	}
	product.RegularPrice = a.prices.RegularPrice(product.Brand, product.WholesalePrice)

	// обычные характеристики: пары name/value, без вариаций
	for _, attribute := range doc.List("attributes") {
		name := attribute.String("name", "")
		value := attribute.String("value", "")
		if name == "" || value == "" {
			continue
		}
		product.Attributes = append(product.Attributes, models.Attribute{
			Name:    name,
			Options: []string{value},
		})
	}

	variants := doc.List("variants")

	// порядок обхода map недетерминирован, поэтому собираем значения по
	// отсортированному списку имён
	collector := newOptionCollector()
	for _, variant := range variants {
		attrs := variant.Child("attrs")
		for _, name := range sortedKeys(attrs) {
			collector.Add(name, attrs.String(name, ""))
		}
	}
	product.Attributes = append(product.Attributes, collector.Attributes()...)

	for _, variant := range variants {
		id := variant.String("id", "")
		attrs := variant.Child("attrs")
		names := sortedKeys(attrs)
		if id == "" && len(names) == 0 {
			continue
		}

		options := make([]string, 0, len(names))
		variationAttrs := make([]models.VariationAttribute, 0, len(names))
		for _, name := range names {
			option := attrs.String(name, "")
			if option == "" {
				continue
			}
			options = append(options, option)
			variationAttrs = append(variationAttrs, models.VariationAttribute{Name: name, Option: option})
		}

		wholesale := variant.Float("price")
		if wholesale == 0 {
			wholesale = product.WholesalePrice
		}
		stock := variant.Int("qty")
		if stock < 0 {
			stock = 0
		}

		product.Variations = append(product.Variations, models.Variation{
			SKU:            DeriveVariationSKU(a.text, record.SKU, id, options),
			Attributes:     variationAttrs,
			StockQuantity:  stock,
			WholesalePrice: wholesale,
			RegularPrice:   a.prices.RegularPrice(product.Brand, wholesale),
			Meta: map[string]string{
				"_source_code": id,
			},
		})
	}

	return product, nil
}

func arenCategories(doc payload.Document) []string {
	segments := doc.Strings("category_path")
	if len(segments) == 1 && strings.Contains(segments[0], "|") {
		return SplitCategoryPath(segments[0], "|")
	}
	var result []string
	seen := make(map[string]struct{})
	for _, segment := range segments {
		if _, dup := seen[segment]; dup {
			continue
		}
		seen[segment] = struct{}{}
		result = append(result, segment)
	}
	return result
}

func sortedKeys(doc payload.Document) []string {
	if doc == nil {
		return nil
	}
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
