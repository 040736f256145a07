package models

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

const (
	JobTypeBatchImport     = "batch_import"
	JobTypeImageProcessing = "image_processing"
	JobTypeCleanup         = "cleanup"
)

const DefaultJobPriority = 5

// QueueJob — единица фоновой работы. Пока status=pending всегда
// attempts <= max_attempts; достигнув max_attempts с ошибкой, задача
// навсегда остаётся в failed и больше не планируется.
type QueueJob struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	JobData      json.RawMessage `json:"job_data"`
	Priority     int             `json:"priority"`
	Status       JobStatus       `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// PerformanceStat — append-only запись о выполнении задачи. Используется
// только в агрегатах скользящего окна, отдельные строки никогда не мутируются.
type PerformanceStat struct {
	ID             int64         `json:"id"`
	JobType        string        `json:"job_type"`
	BatchSize      int           `json:"batch_size"`
	ProcessingTime time.Duration `json:"processing_time"`
	MemoryDelta    int64         `json:"memory_delta"`
	SuccessCount   int           `json:"success_count"`
	ErrorCount     int           `json:"error_count"`
	CreatedAt      time.Time     `json:"created_at"`
}

// PerformanceSummary — агрегат по типу задачи за скользящее окно.
type PerformanceSummary struct {
	JobType           string        `json:"job_type"`
	AvgProcessingTime time.Duration `json:"avg_processing_time"`
	AvgBatchSize      float64       `json:"avg_batch_size"`
	SuccessRate       float64       `json:"success_rate"`
	Samples           int           `json:"samples"`
}
