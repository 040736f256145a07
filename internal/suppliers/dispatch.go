package suppliers

import (
	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/pkg/business/service"
)

// Registry хранит по одному адаптеру на поставщика и выбирает его по
// wholesaler_name записи. Неизвестный поставщик получает passthrough-адаптер:
// это определённый вырожденный случай, а не ошибка.
type Registry struct {
	js          *JSAdapter
	mada        *MADAAdapter
	aren        *ARENAdapter
	passthrough *PassthroughAdapter
}

func NewRegistry(syncValues values.SyncValues) *Registry {
	prices := services.NewPriceEngine(syncValues)
	text := service.NewTextService()
	return &Registry{
		js:          NewJSAdapter(prices, text, syncValues),
		mada:        NewMADAAdapter(prices, text, syncValues),
		aren:        NewARENAdapter(prices, text, syncValues),
		passthrough: NewPassthroughAdapter(),
	}
}

func (r *Registry) AdapterFor(w models.Wholesaler) services.SupplierAdapter {
	switch w {
	case models.WholesalerJS:
		return r.js
	case models.WholesalerMADA:
		return r.mada
	case models.WholesalerAREN:
		return r.aren
	default:
		return r.passthrough
	}
}
