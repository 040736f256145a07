package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goproductsync_api/config/values"
)

func TestRegularPriceAppliesMargin(t *testing.T) {
	engine := NewPriceEngine(values.DefaultSyncValues())

	assert.Equal(t, "120.00", engine.RegularPrice("Acme", 100))
	assert.Equal(t, "1800.60", engine.RegularPrice("Acme", 1500.5))
	assert.Equal(t, "0.00", engine.RegularPrice("Acme", -5))
}

func TestRegularPricePassThroughBrand(t *testing.T) {
	engine := NewPriceEngine(values.DefaultSyncValues())

	assert.Equal(t, "100.00", engine.RegularPrice("Mediolano", 100))
	assert.Equal(t, "100.00", engine.RegularPrice("  mediolano  ", 100))
	assert.True(t, engine.IsPassThrough("MEDIOLANO"))
	assert.False(t, engine.IsPassThrough("Acme"))
}

func TestRegularPriceCustomMargin(t *testing.T) {
	engine := NewPriceEngine(values.SyncValues{MarginPercent: 50})
	assert.Equal(t, "30.00", engine.RegularPrice("Any", 20))
}
