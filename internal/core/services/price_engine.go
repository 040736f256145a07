package services

import (
	"strconv"
	"strings"

	"goproductsync_api/config/values"
)

// PriceEngine вычисляет розничную цену из закупочной: наценка в процентах,
// кроме брендов из списка pass-through, для которых цена передаётся как есть.
type PriceEngine struct {
	margin      float64
	passThrough map[string]struct{}
}

func NewPriceEngine(v values.SyncValues) *PriceEngine {
	passThrough := make(map[string]struct{}, len(v.PassThroughBrands))
	for _, brand := range v.PassThroughBrands {
		passThrough[strings.ToLower(strings.TrimSpace(brand))] = struct{}{}
	}
	return &PriceEngine{
		margin:      v.MarginPercent,
		passThrough: passThrough,
	}
}

// IsPassThrough сравнивает бренд без учёта регистра.
func (e *PriceEngine) IsPassThrough(brand string) bool {
	_, ok := e.passThrough[strings.ToLower(strings.TrimSpace(brand))]
	return ok
}

// RegularPrice возвращает розничную цену строкой с двумя знаками после запятой.
func (e *PriceEngine) RegularPrice(brand string, wholesale float64) string {
	if wholesale < 0 {
		wholesale = 0
	}
	if e.IsPassThrough(brand) {
		return FormatPrice(wholesale)
	}
	return FormatPrice(wholesale * (1 + e.margin/100))
}

func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
