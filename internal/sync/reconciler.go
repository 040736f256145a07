package sync

import (
	"context"
	"fmt"
	"log"
	"sort"

	"goproductsync_api/internal/catalog"
	"goproductsync_api/internal/catalog/dto/request"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/metrics"
)

// RawRecordStore — контракт хранилища сырых записей, нужный движку сверки.
type RawRecordStore interface {
	FetchPending(ctx context.Context, limit int) ([]*models.RawFeedRecord, error)
	MarkCompleted(ctx context.Context, ids []int) error
	MarkSkipped(ctx context.Context, ids []int) error
}

// AdapterRegistry выбирает адаптер нормализации по поставщику.
type AdapterRegistry interface {
	AdapterFor(w models.Wholesaler) services.SupplierAdapter
}

// Result — структурированный итог одного прохода сверки: общий успех
// отделён от пер-элементных ошибок, ошибки никогда не глотаются молча.
type Result struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Reconciler нормализует порцию Pending-записей, одним bulk-запросом
// резолвит существующие SKU в каталоге, делит на create/update, шлёт
// чанкованные батч-вызовы и одним запросом помечает успешные записи.
type Reconciler struct {
	records  RawRecordStore
	catalog  catalog.Client
	adapters AdapterRegistry
	metrics  *metrics.SyncMetrics
}

func NewReconciler(records RawRecordStore, catalogClient catalog.Client, adapters AdapterRegistry) *Reconciler {
	return &Reconciler{
		records:  records,
		catalog:  catalogClient,
		adapters: adapters,
		metrics:  &metrics.SyncMetrics{},
	}
}

// FetchPending отдаёт очередную порцию записей, старые первыми — очередь
// не голодает и всегда двигается вперёд.
func (r *Reconciler) FetchPending(ctx context.Context, limit int) ([]*models.RawFeedRecord, error) {
	return r.records.FetchPending(ctx, limit)
}

// candidate — запись, пережившая нормализацию.
type candidate struct {
	record    *models.RawFeedRecord
	product   *models.CanonicalProduct
	catalogID int64
}

// Reconcile — ядро алгоритма. Ошибка БД здесь фатальна и поднимается
// наверх; отказ отдельного чанка каталога изолируется в Errors, его записи
// остаются Pending и будут выбраны следующим проходом.
func (r *Reconciler) Reconcile(ctx context.Context, records []*models.RawFeedRecord) (*Result, error) {
	result := &Result{}
	if len(records) == 0 {
		return result, nil
	}

	candidates, skippedIDs := r.normalize(records)
	result.Skipped = len(skippedIDs)

	if err := r.records.MarkSkipped(ctx, skippedIDs); err != nil {
		return nil, fmt.Errorf("failed to mark skipped records: %w", err)
	}
	if len(candidates) == 0 {
		return result, nil
	}

	// единственный bulk-поиск по SKU за проход; никогда не кешируется
	// между вызовами — на нём держится идемпотентность create
	skus := make([]string, 0, len(candidates))
	for _, c := range candidates {
		skus = append(skus, c.product.SKU)
	}
	existing, err := r.catalog.LookupProductIDs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("bulk sku resolution failed: %w", err)
	}

	var creates, updates []*candidate
	for _, c := range candidates {
		if id, found := existing[c.product.SKU]; found {
			c.catalogID = id
			updates = append(updates, c)
		} else {
			creates = append(creates, c)
		}
	}
	log.Printf("Reconciling %d records: %d to create, %d to update, %d skipped",
		len(records), len(creates), len(updates), result.Skipped)

	var completed []*candidate
	created := r.uploadProducts(ctx, creates, true, result)
	updated := r.uploadProducts(ctx, updates, false, result)
	result.Created = len(created)
	result.Updated = len(updated)
	completed = append(completed, created...)
	completed = append(completed, updated...)

	for _, c := range completed {
		if len(c.product.Variations) > 0 {
			r.reconcileVariations(ctx, c, result)
		}
		r.assignTerms(ctx, c, result)
	}

	completedIDs := make([]int, 0, len(completed))
	for _, c := range completed {
		completedIDs = append(completedIDs, c.record.ID)
	}
	if err := r.records.MarkCompleted(ctx, completedIDs); err != nil {
		return nil, fmt.Errorf("bulk status update failed: %w", err)
	}

	r.metrics.CreatedCount.Add(int32(result.Created))
	r.metrics.UpdatedCount.Add(int32(result.Updated))
	r.metrics.SkippedCount.Add(int32(result.Skipped))
	r.metrics.ErroredRecords.Add(int32(len(result.Errors)))
	return result, nil
}

// normalize прогоняет каждую запись через её адаптер. Пустой продукт —
// дефект нормализации: запись уходит в Skipped и наверх не поднимается.
func (r *Reconciler) normalize(records []*models.RawFeedRecord) ([]*candidate, []int) {
	var candidates []*candidate
	var skippedIDs []int
	for _, record := range records {
		adapter := r.adapters.AdapterFor(record.Wholesaler)
		product, err := adapter.Normalize(record)
		if err != nil || product.Empty() {
			if err != nil {
				log.Printf("Normalization defect for record %d (%s): %s", record.ID, record.SKU, err)
			}
			skippedIDs = append(skippedIDs, record.ID)
			continue
		}
		candidates = append(candidates, &candidate{record: record, product: product})
	}
	return candidates, skippedIDs
}

// uploadProducts шлёт кандидатов чанками в пределах лимита каталога и
// возвращает успешно обработанных. Отказ одного физического вызова задевает
// только его чанк, остальные чанки идут независимо.
func (r *Reconciler) uploadProducts(ctx context.Context, candidates []*candidate, create bool, result *Result) []*candidate {
	var succeeded []*candidate
	for _, chunk := range chunkSlice(candidates, catalog.BatchLimit) {
		payloads := make([]request.Product, 0, len(chunk))
		bySKU := make(map[string]*candidate, len(chunk))
		for _, c := range chunk {
			payloads = append(payloads, buildProductPayload(c))
			bySKU[c.product.SKU] = c
		}

		var batch request.ProductBatch
		if create {
			batch.Create = payloads
		} else {
			batch.Update = payloads
		}

		resp, err := r.catalog.BatchProducts(ctx, batch)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("batch call failed for %d items: %s", len(chunk), err))
			continue
		}

		items := resp.Create
		if !create {
			items = resp.Update
		}
		for _, item := range items {
			c, known := bySKU[item.SKU]
			if !known {
				continue
			}
			if item.Failed() {
				result.Errors = append(result.Errors,
					fmt.Sprintf("sku %s: %s", item.SKU, item.Error.Message))
				continue
			}
			c.catalogID = item.ID
			succeeded = append(succeeded, c)
		}
	}
	return succeeded
}

// reconcileVariations — второй проход: bulk-поиск существующих вариаций
// под родителем, create/update, чанкованные вызовы.
func (r *Reconciler) reconcileVariations(ctx context.Context, c *candidate, result *Result) {
	existing, err := r.catalog.LookupVariationIDs(ctx, c.catalogID)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("sku %s: variation lookup failed: %s", c.product.SKU, err))
		return
	}

	var creates, updates []request.Variation
	for _, variation := range c.product.Variations {
		payload := buildVariationPayload(variation)
		if id, found := existing[variation.SKU]; found {
			payload.ID = id
			updates = append(updates, payload)
		} else {
			creates = append(creates, payload)
		}
	}

	r.uploadVariations(ctx, c, request.VariationBatch{Create: creates}, result)
	r.uploadVariations(ctx, c, request.VariationBatch{Update: updates}, result)
}

// uploadVariations выполняет один батч-вызов вариаций. Батч крупнее лимита
// рекурсивно нарезается на под-батчи не больше половины лимита, чтобы
// ограничить размер одного физического вызова.
func (r *Reconciler) uploadVariations(ctx context.Context, c *candidate, batch request.VariationBatch, result *Result) {
	total := len(batch.Create) + len(batch.Update)
	if total == 0 {
		return
	}
	if total > catalog.BatchLimit {
		half := catalog.BatchLimit / 2
		for _, chunk := range chunkSlice(batch.Create, half) {
			r.uploadVariations(ctx, c, request.VariationBatch{Create: chunk}, result)
		}
		for _, chunk := range chunkSlice(batch.Update, half) {
			r.uploadVariations(ctx, c, request.VariationBatch{Update: chunk}, result)
		}
		return
	}

	resp, err := r.catalog.BatchVariations(ctx, c.catalogID, batch)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("sku %s: variation batch failed for %d items: %s", c.product.SKU, total, err))
		return
	}
	for _, item := range append(resp.Create, resp.Update...) {
		if item.Failed() {
			result.Errors = append(result.Errors,
				fmt.Sprintf("sku %s: variation %s: %s", c.product.SKU, item.SKU, item.Error.Message))
		}
	}
}

// assignTerms привязывает таксономию один раз на товар, когда id известен.
func (r *Reconciler) assignTerms(ctx context.Context, c *candidate, result *Result) {
	if len(c.product.Categories) == 0 && c.product.Brand == "" {
		return
	}
	terms := request.TermsAssignment{
		Categories: c.product.Categories,
		Brand:      c.product.Brand,
	}
	if err := r.catalog.AssignTerms(ctx, c.catalogID, terms); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("sku %s: terms assignment failed: %s", c.product.SKU, err))
	}
}

func buildProductPayload(c *candidate) request.Product {
	product := c.product
	payload := request.Product{
		ID:           c.catalogID,
		SKU:          product.SKU,
		Name:         product.Name,
		Description:  product.Description,
		RegularPrice: product.RegularPrice,
		MetaData:     metaEntries(product.Meta),
	}
	for _, image := range product.Images {
		payload.Images = append(payload.Images, request.Image{Src: image.Src})
	}
	for _, attribute := range product.Attributes {
		payload.Attributes = append(payload.Attributes, request.Attribute{
			Name:      attribute.Name,
			Variation: attribute.Variation,
			Options:   attribute.Options,
		})
	}
	return payload
}

func buildVariationPayload(variation models.Variation) request.Variation {
	payload := request.Variation{
		SKU:           variation.SKU,
		RegularPrice:  variation.RegularPrice,
		StockQuantity: variation.StockQuantity,
		MetaData:      metaEntries(variation.Meta),
	}
	for _, attribute := range variation.Attributes {
		payload.Attributes = append(payload.Attributes, request.VariationAttribute{
			Name:   attribute.Name,
			Option: attribute.Option,
		})
	}
	return payload
}

func metaEntries(meta map[string]string) []request.MetaEntry {
	if len(meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entries := make([]request.MetaEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, request.MetaEntry{Key: key, Value: meta[key]})
	}
	return entries
}

func (r *Reconciler) Metrics() *metrics.SyncMetrics {
	return r.metrics
}
