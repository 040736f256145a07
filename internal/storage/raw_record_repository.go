package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"goproductsync_api/internal/core/models"
)

// RawRecordRepository работает с таблицей raw_feed.records. Записи создаёт
// внешний загрузчик; здесь меняется только status, и всегда одним запросом
// по списку id.
type RawRecordRepository struct {
	db *sql.DB
}

func NewRawRecordRepository(db *sql.DB) *RawRecordRepository {
	log.Printf("RawRecordRepository successfully created.")
	return &RawRecordRepository{db: db}
}

// FetchPending возвращает до limit записей в статусе Pending, старые первыми.
func (r *RawRecordRepository) FetchPending(ctx context.Context, limit int) ([]*models.RawFeedRecord, error) {
	query := `SELECT id, wholesaler_name, sku, brand, raw_payload, status, created_at, updated_at
			  FROM raw_feed.records
			  WHERE status = $1
			  ORDER BY id ASC
			  LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.RecordPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending records: %w", err)
	}
	defer rows.Close()

	var records []*models.RawFeedRecord
	for rows.Next() {
		var record models.RawFeedRecord
		if err := rows.Scan(
			&record.ID, &record.Wholesaler, &record.SKU, &record.Brand,
			&record.Payload, &record.Status, &record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan raw record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return records, nil
}

// MarkCompleted переводит записи в Completed одним запросом по списку id.
func (r *RawRecordRepository) MarkCompleted(ctx context.Context, ids []int) error {
	return r.setStatus(ctx, ids, models.RecordCompleted)
}

// MarkSkipped помечает записи с дефектной нормализацией.
func (r *RawRecordRepository) MarkSkipped(ctx context.Context, ids []int) error {
	return r.setStatus(ctx, ids, models.RecordSkipped)
}

// MarkFailed — терминальный статус, проставляется слоем очереди после
// исчерпания повторов, не самим движком сверки.
func (r *RawRecordRepository) MarkFailed(ctx context.Context, ids []int) error {
	return r.setStatus(ctx, ids, models.RecordFailed)
}

func (r *RawRecordRepository) setStatus(ctx context.Context, ids []int, status models.RecordStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE raw_feed.records
			  SET status = $1, updated_at = current_timestamp
			  WHERE id = ANY($2) AND status = $3`

	if _, err := r.db.ExecContext(ctx, query, status, pq.Array(ids), models.RecordPending); err != nil {
		return fmt.Errorf("failed to set status %s: %w", status, err)
	}
	return nil
}

func (r *RawRecordRepository) Close() error {
	return r.db.Close()
}
