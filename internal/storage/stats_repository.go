package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"goproductsync_api/internal/core/models"
)

// StatsRepository — append-only таблица queue.performance_stats.
// Строки пишутся по одной и читаются только агрегатами скользящего окна.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	log.Printf("StatsRepository successfully created.")
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Insert(ctx context.Context, stat *models.PerformanceStat) error {
	query := `INSERT INTO queue.performance_stats
			  (job_type, batch_size, processing_time_ms, memory_delta, success_count, error_count)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		stat.JobType, stat.BatchSize, stat.ProcessingTime.Milliseconds(),
		stat.MemoryDelta, stat.SuccessCount, stat.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance stat: %w", err)
	}
	return nil
}

// Summary агрегирует статистику по типам задач за скользящее окно.
func (r *StatsRepository) Summary(ctx context.Context, window time.Duration) ([]models.PerformanceSummary, error) {
	query := `SELECT job_type,
				  AVG(processing_time_ms),
				  AVG(batch_size),
				  SUM(success_count),
				  SUM(error_count),
				  COUNT(*)
			  FROM queue.performance_stats
			  WHERE created_at >= current_timestamp - ($1 * interval '1 second')
			  GROUP BY job_type`

	rows, err := r.db.QueryContext(ctx, query, int(window.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("failed to get performance summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.PerformanceSummary
	for rows.Next() {
		var summary models.PerformanceSummary
		var avgMs, avgBatch sql.NullFloat64
		var successes, failures sql.NullInt64
		if err := rows.Scan(&summary.JobType, &avgMs, &avgBatch, &successes, &failures, &summary.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.AvgProcessingTime = time.Duration(avgMs.Float64) * time.Millisecond
		summary.AvgBatchSize = avgBatch.Float64
		total := successes.Int64 + failures.Int64
		if total > 0 {
			summary.SuccessRate = float64(successes.Int64) / float64(total)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return summaries, nil
}

// Purge удаляет строки старше окна хранения. Идемпотентна.
func (r *StatsRepository) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM queue.performance_stats
			  WHERE created_at < current_timestamp - ($1 * interval '1 second')`
	result, err := r.db.ExecContext(ctx, query, int(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to purge performance stats: %w", err)
	}
	return result.RowsAffected()
}
