package suppliers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goproductsync_api/pkg/business/service"
)

func TestDeriveVariationSKU(t *testing.T) {
	text := service.NewTextService()

	sku := DeriveVariationSKU(text, "JS-100", "C1", []string{"Red", "M"})
	assert.Equal(t, "js-100-c1-m-red", sku)

	// порядок характеристик на входе не влияет на результат
	assert.Equal(t, sku, DeriveVariationSKU(text, "JS-100", "C1", []string{"M", "Red"}))

	// повторные части после слагификации схлопываются
	assert.Equal(t, "sku-1-red", DeriveVariationSKU(text, "SKU-1", "sku 1", []string{"Red"}))

	// пустые части отбрасываются
	assert.Equal(t, "p-x", DeriveVariationSKU(text, "P", "", []string{"", "X"}))
}

func TestDeriveVariationSKUFallsBackToUnique(t *testing.T) {
	text := service.NewTextService()

	first := DeriveVariationSKU(text, "", "", nil)
	second := DeriveVariationSKU(text, "", "", nil)
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestSplitCategoryPath(t *testing.T) {
	assert.Equal(t, []string{"Men", "Shirts"}, SplitCategoryPath("Men/Shirts", "/"))
	assert.Equal(t, []string{"A", "B"}, SplitCategoryPath(" A | B | A ", "|"))
	assert.Nil(t, SplitCategoryPath("", "/"))
	assert.Nil(t, SplitCategoryPath("///", "/"))
}
