package infrastructure

import (
	"database/sql"
	"fmt"
	"log"
)

const (
	MigrationsSchemaName = "migrations.schema"
	RawFeedSchemaName    = "raw_feed.schema"
	QueueSchemaName      = "queue.schema"
	RawFeedRecordsName   = "raw_feed.records"
	QueueJobsName        = "queue.jobs"
	PerformanceStatsName = "queue.performance_stats"
)

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS migrations;
		CREATE TABLE IF NOT EXISTS migrations.migrations (
			name VARCHAR(255) PRIMARY KEY,
			time TIMESTAMP NOT NULL
		);
		`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	log.Printf("Migration '%s' completed successfully.", MigrationsSchemaName)
	return nil
}

type RawFeedSchema struct{}

func (m *RawFeedSchema) UpMigration(db *sql.DB) error {
	return applyOnce(db, RawFeedSchemaName, `CREATE SCHEMA IF NOT EXISTS raw_feed;`)
}

type QueueSchema struct{}

func (m *QueueSchema) UpMigration(db *sql.DB) error {
	return applyOnce(db, QueueSchemaName, `CREATE SCHEMA IF NOT EXISTS queue;`)
}

type RawFeedRecords struct{}

func (m *RawFeedRecords) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS raw_feed.records (
			id SERIAL PRIMARY KEY,
			wholesaler_name VARCHAR(32) NOT NULL,
			sku VARCHAR(255) NOT NULL,
			brand VARCHAR(255),
			raw_payload JSONB,
			status VARCHAR(16) NOT NULL DEFAULT 'Pending',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);
		CREATE UNIQUE INDEX IF NOT EXISTS raw_feed_records_sku_idx
			ON raw_feed.records(sku);
		CREATE INDEX IF NOT EXISTS raw_feed_records_status_id_idx
			ON raw_feed.records(status, id);
		`
	return applyOnce(db, RawFeedRecordsName, query)
}

type QueueJobs struct{}

func (m *QueueJobs) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS queue.jobs (
			id BIGSERIAL PRIMARY KEY,
			job_type VARCHAR(64) NOT NULL,
			job_data JSONB NOT NULL DEFAULT '{}',
			priority INT NOT NULL DEFAULT 5,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			max_attempts INT NOT NULL DEFAULT 3,
			scheduled_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			started_at TIMESTAMP,
			completed_at TIMESTAMP,
			error_message TEXT
		);
		CREATE INDEX IF NOT EXISTS queue_jobs_claim_idx
			ON queue.jobs(status, scheduled_at, priority DESC, id);
		`
	return applyOnce(db, QueueJobsName, query)
}

type PerformanceStats struct{}

func (m *PerformanceStats) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS queue.performance_stats (
			id BIGSERIAL PRIMARY KEY,
			job_type VARCHAR(64) NOT NULL,
			batch_size INT NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			memory_delta BIGINT NOT NULL,
			success_count INT NOT NULL,
			error_count INT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		);
		CREATE INDEX IF NOT EXISTS performance_stats_window_idx
			ON queue.performance_stats(created_at, job_type);
		`
	return applyOnce(db, PerformanceStatsName, query)
}

func applyOnce(db *sql.DB, name, query string) error {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", name).Scan(&migrationExists)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.", name)
		return nil
	}

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to apply migration '%s': %w", name, err)
	}
	if _, err := db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", name); err != nil {
		return fmt.Errorf("failed to mark '%s' migration as complete: %w", name, err)
	}

	log.Printf("Migration '%s' completed successfully.", name)
	return nil
}
