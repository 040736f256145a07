package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"goproductsync_api/config"
	"goproductsync_api/internal/catalog"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/internal/core/services"
	"goproductsync_api/internal/scheduler"
	"goproductsync_api/internal/storage"
	"goproductsync_api/internal/suppliers"
	syncengine "goproductsync_api/internal/sync"
	"goproductsync_api/metrics"
	"goproductsync_api/migrations/infrastructure"
	"goproductsync_api/pkg/dbconnect"
	"goproductsync_api/pkg/dbconnect/migration"
	"goproductsync_api/pkg/middleware"
)

// SyncServer собирает весь конвейер синхронизации: миграции, репозитории,
// адаптеры, клиент каталога, движок сверки и планировщик.
type SyncServer struct {
	dbconnect.Database
	cfg    *config.AppConfig
	images services.ImageProcessor
}

func NewSyncServer(dbCon dbconnect.Database, cfg *config.AppConfig) *SyncServer {
	return &SyncServer{Database: dbCon, cfg: cfg}
}

// WithImageProcessor подключает внешний обработчик изображений. Без него
// задачи image_processing завершаются ошибкой.
func (s *SyncServer) WithImageProcessor(proc services.ImageProcessor) *SyncServer {
	s.images = proc
	return s
}

func (s *SyncServer) Run(ctx context.Context) error {
	db, err := s.Connect()
	if err != nil {
		return fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}
	defer db.Close()

	migrationApply := []migration.MigrationInterface{
		&infrastructure.MigrationsSchema{},
		&infrastructure.RawFeedSchema{},
		&infrastructure.QueueSchema{},
		&infrastructure.RawFeedRecords{},
		&infrastructure.QueueJobs{},
		&infrastructure.PerformanceStats{},
	}
	for _, m := range migrationApply {
		if err := m.UpMigration(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Println("Sync migrations applied successfully!")

	rawRepo := storage.NewRawRecordRepository(db)
	queueRepo := storage.NewQueueRepository(db)
	statsRepo := storage.NewStatsRepository(db)

	registry := suppliers.NewRegistry(s.cfg.Sync)
	client := catalog.NewHTTPClient(s.cfg.Catalog.BaseURL, catalog.NewBearerAuth(s.cfg.Catalog.ApiKey), os.Stdout)
	reconciler := syncengine.NewReconciler(rawRepo, client, registry)

	resched := scheduler.NewTimerRescheduler()
	sched := scheduler.NewScheduler(queueRepo, statsRepo, scheduler.NewSystemLoad(), resched, s.cfg.Queue)
	sched.RegisterRecurring(models.JobTypeBatchImport, batchImportHandler(reconciler))
	sched.RegisterHandler(models.JobTypeImageProcessing, imageProcessingHandler(s.images))
	sched.RegisterHandler(models.JobTypeCleanup, func(ctx context.Context, job *models.QueueJob) (scheduler.HandlerResult, error) {
		if err := sched.Cleanup(ctx); err != nil {
			return scheduler.HandlerResult{}, err
		}
		return scheduler.HandlerResult{SuccessCount: 1}, nil
	})
	resched.Bind(func() {
		if err := sched.Tick(context.Background()); err != nil {
			log.Printf("Tick failed: %s", err)
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ping(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	go func() {
		if err := http.ListenAndServe(":9090", middleware.PrometheusMiddleware(mux)); err != nil {
			log.Printf("Metrics endpoint stopped: %s", err)
		}
	}()

	if _, err := sched.Submit(ctx, models.JobTypeBatchImport, nil, models.DefaultJobPriority); err != nil {
		return fmt.Errorf("failed to submit initial import job: %w", err)
	}
	if err := sched.Tick(ctx); err != nil {
		log.Printf("Tick failed: %s", err)
	}

	<-ctx.Done()
	return nil
}

// batchImportHandler — тело задачи batch_import: порция Pending-записей
// проходит полную сверку, итог уходит в статистику планировщика.
func batchImportHandler(reconciler *syncengine.Reconciler) scheduler.HandlerFunc {
	return func(ctx context.Context, job *models.QueueJob) (scheduler.HandlerResult, error) {
		var params struct {
			Limit int `json:"limit"`
		}
		if len(job.JobData) > 0 {
			if err := json.Unmarshal(job.JobData, &params); err != nil {
				return scheduler.HandlerResult{}, fmt.Errorf("malformed job data: %w", err)
			}
		}
		if params.Limit <= 0 {
			params.Limit = 50
		}

		records, err := reconciler.FetchPending(ctx, params.Limit)
		if err != nil {
			return scheduler.HandlerResult{}, err
		}
		result, err := reconciler.Reconcile(ctx, records)
		if err != nil {
			return scheduler.HandlerResult{}, err
		}
		return scheduler.HandlerResult{
			BatchSize:    len(records),
			SuccessCount: result.Created + result.Updated,
			ErrorCount:   len(result.Errors),
		}, nil
	}
}

// imageProcessingHandler делегирует задачу image_processing внешнему
// обработчику.
func imageProcessingHandler(proc services.ImageProcessor) scheduler.HandlerFunc {
	return func(ctx context.Context, job *models.QueueJob) (scheduler.HandlerResult, error) {
		if proc == nil {
			return scheduler.HandlerResult{}, errors.New("no image processor configured")
		}
		processed, err := proc.Process(ctx, job.JobData)
		if err != nil {
			return scheduler.HandlerResult{}, err
		}
		return scheduler.HandlerResult{BatchSize: processed, SuccessCount: processed}, nil
	}
}
