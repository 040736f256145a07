package suppliers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
)

func arenRecord(payload string) *models.RawFeedRecord {
	return &models.RawFeedRecord{
		ID:         3,
		Wholesaler: models.WholesalerAREN,
		SKU:        "AR-1",
		Brand:      "Aren",
		Payload:    json.RawMessage(payload),
	}
}

func TestARENAdapterNormalize(t *testing.T) {
	registry := NewRegistry(values.DefaultSyncValues())
	adapter := registry.AdapterFor(models.WholesalerAREN)

	product, err := adapter.Normalize(arenRecord(`{"product": {
		"title": "Лампа",
		"producer": "Mediolano",
		"desc": "Настольная лампа",
		"price": 200,
		"category_path": ["Дом", "Свет"],
		"gallery": [{"url": "x.jpg"}],
		"attributes": [{"name": "Material", "value": "Steel"}],
		"variants": [
			{"id": "V1", "attrs": {"Color": "Black", "Wattage": "60W"}, "qty": 4, "price": 210},
			{"id": "V2", "attrs": {"Color": "White", "Wattage": "60W"}, "qty": -1}
		]
	}}`))
	require.NoError(t, err)

	assert.Equal(t, "Лампа", product.Name)
	assert.Equal(t, "Mediolano", product.Brand)
	assert.Equal(t, []string{"Дом", "Свет"}, product.Categories)
	require.Len(t, product.Images, 1)

	// pass-through бренд: наценка не применяется
	assert.Equal(t, "200.00", product.RegularPrice)

	require.Len(t, product.Attributes, 3)
	assert.Equal(t, models.Attribute{Name: "Material", Options: []string{"Steel"}}, product.Attributes[0])
	assert.Equal(t, models.Attribute{Name: "Color", Variation: true, Options: []string{"Black", "White"}}, product.Attributes[1])
	assert.Equal(t, models.Attribute{Name: "Wattage", Variation: true, Options: []string{"60W"}}, product.Attributes[2])

	require.Len(t, product.Variations, 2)
	first := product.Variations[0]
	assert.Equal(t, "ar-1-v1-60w-black", first.SKU)
	assert.Equal(t, "210.00", first.RegularPrice)
	assert.Equal(t, 4, first.StockQuantity)
	require.Len(t, first.Attributes, 2)
	assert.Equal(t, models.VariationAttribute{Name: "Color", Option: "Black"}, first.Attributes[0])

	second := product.Variations[1]
	assert.Equal(t, 200.0, second.WholesalePrice)
	assert.Equal(t, 0, second.StockQuantity)
}

func TestARENAdapterPipeSeparatedCategoryPath(t *testing.T) {
	registry := NewRegistry(values.DefaultSyncValues())
	adapter := registry.AdapterFor(models.WholesalerAREN)

	product, err := adapter.Normalize(arenRecord(`{"product": {
		"title": "Лампа", "price": 10,
		"category_path": "Дом|Свет|Свет"
	}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Дом", "Свет"}, product.Categories)
}

func TestAdapterForUnknownWholesalerIsPassthrough(t *testing.T) {
	registry := NewRegistry(values.DefaultSyncValues())
	adapter := registry.AdapterFor(models.Wholesaler("NOBODY"))

	record := &models.RawFeedRecord{
		ID:         4,
		Wholesaler: models.Wholesaler("NOBODY"),
		SKU:        "NB-1",
		Brand:      "Any",
		Payload:    json.RawMessage(`{"whatever": true}`),
	}
	product, err := adapter.Normalize(record)
	require.NoError(t, err)

	assert.Equal(t, "NB-1", product.SKU)
	assert.Equal(t, "NB-1", product.Name)
	assert.Equal(t, "NOBODY", product.Meta["_wholesaler"])
	assert.JSONEq(t, `{"whatever": true}`, product.Meta["_raw_payload"])
	assert.Empty(t, product.Variations)
}
