package catalog

import (
	"context"

	"goproductsync_api/internal/catalog/dto/request"
	"goproductsync_api/internal/catalog/dto/response"
)

// BatchLimit — жёсткий лимит каталога на число элементов в одном
// батч-вызове. Вызовы крупнее обязаны нарезаться на чанки.
const BatchLimit = 100

// Client — батч-контракт внешнего каталога. Синхронный запрос/ответ,
// никакого стриминга; все мутации каталога идут только через него.
type Client interface {
	// LookupProductIDs возвращает id каталога для найденных SKU одним
	// запросом. Отсутствующие SKU просто не попадают в результат.
	LookupProductIDs(ctx context.Context, skus []string) (map[string]int64, error)

	// BatchProducts выполняет один физический батч-вызов create/update.
	BatchProducts(ctx context.Context, batch request.ProductBatch) (*response.ProductBatch, error)

	// LookupVariationIDs возвращает SKU -> id существующих вариаций товара.
	LookupVariationIDs(ctx context.Context, productID int64) (map[string]int64, error)

	// BatchVariations выполняет один батч-вызов вариаций под товаром.
	BatchVariations(ctx context.Context, productID int64, batch request.VariationBatch) (*response.ProductBatch, error)

	// AssignTerms привязывает категории/бренд/теги к товару по известному id.
	AssignTerms(ctx context.Context, productID int64, terms request.TermsAssignment) error
}
