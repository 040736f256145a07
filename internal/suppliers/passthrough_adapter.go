package suppliers

import (
	"goproductsync_api/internal/core/models"
)

// PassthroughAdapter обслуживает неизвестного поставщика: payload проходит
// без преобразования, продукт собирается из колонок самой записи.
type PassthroughAdapter struct{}

func NewPassthroughAdapter() *PassthroughAdapter {
	return &PassthroughAdapter{}
}

func (a *PassthroughAdapter) Normalize(record *models.RawFeedRecord) (*models.CanonicalProduct, error) {
	if record == nil {
		return &models.CanonicalProduct{}, nil
	}
	return &models.CanonicalProduct{
		SKU:   record.SKU,
		Name:  record.SKU,
		Brand: record.Brand,
		Meta: map[string]string{
			"_wholesaler":  string(record.Wholesaler),
			"_raw_payload": string(record.Payload),
		},
	}, nil
}
