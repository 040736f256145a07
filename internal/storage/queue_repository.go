package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"goproductsync_api/internal/core/models"
)

// QueueRepository работает с таблицей queue.jobs. Все переходы состояний —
// одиночные атомарные запросы: перекрывающиеся tick-и безопасны без
// явных блокировок.
type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	log.Printf("QueueRepository successfully created.")
	return &QueueRepository{db: db}
}

const jobColumns = `id, job_type, job_data, priority, status, attempts, max_attempts,
			scheduled_at, started_at, completed_at, COALESCE(error_message, '')`

// Enqueue вставляет задачу в статусе pending; выполнение не начинается.
func (r *QueueRepository) Enqueue(ctx context.Context, jobType string, jobData json.RawMessage, priority, maxAttempts int) (int64, error) {
	query := `INSERT INTO queue.jobs (job_type, job_data, priority, status, attempts, max_attempts, scheduled_at)
			  VALUES ($1, $2, $3, $4, 0, $5, current_timestamp)
			  RETURNING id`

	if jobData == nil {
		jobData = json.RawMessage(`{}`)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, query, jobType, []byte(jobData), priority, models.JobPending, maxAttempts).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return id, nil
}

// ClaimNext атомарно выбирает и захватывает следующую задачу: самый высокий
// priority, затем самый старый id, только созревшие (scheduled_at <= now) и
// не исчерпавшие попытки. Попытка инкрементируется при захвате. Возвращает
// nil, nil если подходящих задач нет.
func (r *QueueRepository) ClaimNext(ctx context.Context) (*models.QueueJob, error) {
	query := `UPDATE queue.jobs
			  SET status = $1, started_at = current_timestamp, attempts = attempts + 1
			  WHERE id = (
				  SELECT id FROM queue.jobs
				  WHERE status = $2 AND scheduled_at <= current_timestamp AND attempts < max_attempts
				  ORDER BY priority DESC, id ASC
				  LIMIT 1
				  FOR UPDATE SKIP LOCKED
			  )
			  RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRowContext(ctx, query, models.JobRunning, models.JobPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return job, nil
}

// MarkCompleted — терминальный успех.
func (r *QueueRepository) MarkCompleted(ctx context.Context, id int64) error {
	query := `UPDATE queue.jobs
			  SET status = $1, completed_at = current_timestamp
			  WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, models.JobCompleted, id); err != nil {
		return fmt.Errorf("failed to complete job %d: %w", id, err)
	}
	return nil
}

// Reschedule возвращает задачу в pending с отложенным scheduled_at,
// сохраняя текст последней ошибки.
func (r *QueueRepository) Reschedule(ctx context.Context, id int64, delay time.Duration, errMsg string) error {
	query := `UPDATE queue.jobs
			  SET status = $1,
				  scheduled_at = current_timestamp + ($2 * interval '1 second'),
				  error_message = $3
			  WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, models.JobPending, int(delay.Seconds()), errMsg, id); err != nil {
		return fmt.Errorf("failed to reschedule job %d: %w", id, err)
	}
	return nil
}

// MarkFailed — терминальная ошибка после исчерпания попыток.
func (r *QueueRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `UPDATE queue.jobs
			  SET status = $1, completed_at = current_timestamp, error_message = $2
			  WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.JobFailed, errMsg, id); err != nil {
		return fmt.Errorf("failed to fail job %d: %w", id, err)
	}
	return nil
}

// RunningCount — мягкая проверка занятости; лёгкая рассинхронизация
// допустима, это не инвариант корректности.
func (r *QueueRepository) RunningCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM queue.jobs WHERE status = $1`, models.JobRunning,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count running jobs: %w", err)
	}
	return count, nil
}

func (r *QueueRepository) JobByID(ctx context.Context, id int64) (*models.QueueJob, error) {
	query := `SELECT ` + jobColumns + ` FROM queue.jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return job, nil
}

// SummaryCounts возвращает количество задач по статусам одним запросом.
func (r *QueueRepository) SummaryCounts(ctx context.Context) (map[models.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM queue.jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue summary: %w", err)
	}
	defer rows.Close()

	counts := map[models.JobStatus]int{
		models.JobPending:   0,
		models.JobRunning:   0,
		models.JobCompleted: 0,
		models.JobFailed:    0,
	}
	for rows.Next() {
		var status models.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return counts, nil
}

// PurgeFinished удаляет терминальные задачи старше окна хранения.
// Идемпотентна и безопасна одновременно с ClaimNext.
func (r *QueueRepository) PurgeFinished(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM queue.jobs
			  WHERE status IN ($1, $2)
				AND completed_at < current_timestamp - ($3 * interval '1 second')`
	result, err := r.db.ExecContext(ctx, query, models.JobCompleted, models.JobFailed, int(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to purge finished jobs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.QueueJob, error) {
	var job models.QueueJob
	var jobData []byte
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&job.ID, &job.JobType, &jobData, &job.Priority, &job.Status,
		&job.Attempts, &job.MaxAttempts, &job.ScheduledAt,
		&startedAt, &completedAt, &job.ErrorMessage,
	); err != nil {
		return nil, err
	}
	job.JobData = json.RawMessage(jobData)
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}
