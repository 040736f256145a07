package services

import "goproductsync_api/internal/core/models"

// SupplierAdapter определяет контракт нормализации фида одного поставщика.
type SupplierAdapter interface {
	// Normalize приводит сырую запись к канонической форме. Дефектный или
	// пустой payload даёт пустой продукт и nil-ошибку: такие записи движок
	// сверки помечает как Skipped, адаптер никогда не паникует и не ходит
	// в сеть.
	Normalize(record *models.RawFeedRecord) (*models.CanonicalProduct, error)
}
