package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
	"goproductsync_api/metrics"
)

// QueueStore — контракт хранилища очереди задач.
type QueueStore interface {
	Enqueue(ctx context.Context, jobType string, jobData json.RawMessage, priority, maxAttempts int) (int64, error)
	ClaimNext(ctx context.Context) (*models.QueueJob, error)
	MarkCompleted(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, delay time.Duration, errMsg string) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	RunningCount(ctx context.Context) (int, error)
	JobByID(ctx context.Context, id int64) (*models.QueueJob, error)
	SummaryCounts(ctx context.Context) (map[models.JobStatus]int, error)
	PurgeFinished(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StatsStore — контракт append-only статистики выполнения.
type StatsStore interface {
	Insert(ctx context.Context, stat *models.PerformanceStat) error
	Summary(ctx context.Context, window time.Duration) ([]models.PerformanceSummary, error)
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

// LoadEstimator отдаёт текущую оценку загрузки системы.
type LoadEstimator interface {
	Load() float64
}

// Rescheduler — порт самопланирования: ядро просит «вызови tick ещё раз
// через D», чем именно — таймером или внешним cron — решает обвязка.
// Благодаря порту планировщик тестируется синхронным вызовом Tick в цикле.
type Rescheduler interface {
	ScheduleTick(delay time.Duration)
}

// HandlerResult — итог обработчика, попадающий в статистику.
type HandlerResult struct {
	BatchSize    int
	SuccessCount int
	ErrorCount   int
}

type HandlerFunc func(ctx context.Context, job *models.QueueJob) (HandlerResult, error)

// Scheduler — планировщик очереди. Каждый Tick обрабатывает ровно одну
// задачу до конца; перекрытие возникает лишь от внешнего триггера, и
// ограничение по загрузке — предохранитель от такого перекрытия, а не
// пул потоков.
type Scheduler struct {
	queue     QueueStore
	stats     StatsStore
	load      LoadEstimator
	resched   Rescheduler
	handlers  map[string]HandlerFunc
	recurring map[string]bool
	values    values.QueueValues
}

func NewScheduler(queue QueueStore, stats StatsStore, load LoadEstimator, resched Rescheduler, v values.QueueValues) *Scheduler {
	return &Scheduler{
		queue:     queue,
		stats:     stats,
		load:      load,
		resched:   resched,
		handlers:  make(map[string]HandlerFunc),
		recurring: make(map[string]bool),
		values:    v,
	}
}

func (s *Scheduler) RegisterHandler(jobType string, handler HandlerFunc) {
	s.handlers[jobType] = handler
}

// RegisterRecurring регистрирует обработчик самовозобновляемой задачи:
// по завершении экземпляра — успешном или окончательно неудачном — в
// очередь встаёт следующий. Retry с backoff продолжает текущий экземпляр
// и следующего не порождает.
func (s *Scheduler) RegisterRecurring(jobType string, handler HandlerFunc) {
	s.RegisterHandler(jobType, handler)
	s.recurring[jobType] = true
}

// Submit вставляет pending-задачу; выполнение начнёт ближайший Tick.
func (s *Scheduler) Submit(ctx context.Context, jobType string, jobData json.RawMessage, priority int) (int64, error) {
	return s.queue.Enqueue(ctx, jobType, jobData, priority, s.values.MaxAttempts)
}

// Tick — единица работы планировщика, идемпотентная точка входа для
// внешнего триггера. Ошибки хранилища фатальны для вызова; ошибка
// обработчика — отказ задачи, уходящий в retry/backoff.
func (s *Scheduler) Tick(ctx context.Context) error {
	defer s.scheduleNext()

	load := s.load.Load()
	running, err := s.queue.RunningCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to check running jobs: %w", err)
	}
	if limit := s.ConcurrencyCap(load); running >= limit {
		log.Printf("At capacity (%d running, cap %d, load %.2f), skipping tick", running, limit, load)
		return nil
	}

	job, err := s.queue.ClaimNext(ctx)
	if err != nil {
		return fmt.Errorf("failed to claim next job: %w", err)
	}
	if job == nil {
		return nil
	}

	if job.JobType == models.JobTypeBatchImport {
		job.JobData = s.capImportBatch(job.JobData, s.OptimalBatchSize(load))
	}

	memBefore := heapAlloc()
	start := time.Now()
	result, handlerErr := s.dispatch(ctx, job)
	elapsed := time.Since(start)

	if handlerErr != nil {
		s.failJob(ctx, job, handlerErr, elapsed)
		return nil
	}

	stat := &models.PerformanceStat{
		JobType:        job.JobType,
		BatchSize:      result.BatchSize,
		ProcessingTime: elapsed,
		MemoryDelta:    int64(heapAlloc()) - int64(memBefore),
		SuccessCount:   result.SuccessCount,
		ErrorCount:     result.ErrorCount,
	}
	if err := s.stats.Insert(ctx, stat); err != nil {
		log.Printf("Failed to record performance stat for job %d: %s", job.ID, err)
	}

	metrics.RecordJob(job.JobType, string(models.JobCompleted), elapsed)
	if err := s.queue.MarkCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to complete job %d: %w", job.ID, err)
	}
	s.enqueueNext(ctx, job)
	log.Printf("Job %d (%s) completed in %s: %d ok, %d errors",
		job.ID, job.JobType, elapsed, result.SuccessCount, result.ErrorCount)
	return nil
}

func (s *Scheduler) dispatch(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
	handler, known := s.handlers[job.JobType]
	if !known {
		return HandlerResult{}, fmt.Errorf("unknown job type: %s", job.JobType)
	}
	return handler(ctx, job)
}

func (s *Scheduler) failJob(ctx context.Context, job *models.QueueJob, handlerErr error, elapsed time.Duration) {
	if job.Attempts < job.MaxAttempts {
		delay := backoffDelay(job.Attempts)
		log.Printf("Job %d (%s) failed on attempt %d/%d, retry in %s: %s",
			job.ID, job.JobType, job.Attempts, job.MaxAttempts, delay, handlerErr)
		metrics.RecordJob(job.JobType, string(models.JobPending), elapsed)
		if err := s.queue.Reschedule(ctx, job.ID, delay, handlerErr.Error()); err != nil {
			log.Printf("Failed to reschedule job %d: %s", job.ID, err)
		}
		return
	}

	log.Printf("Job %d (%s) permanently failed after %d attempts: %s",
		job.ID, job.JobType, job.Attempts, handlerErr)
	metrics.RecordJob(job.JobType, string(models.JobFailed), elapsed)
	if err := s.queue.MarkFailed(ctx, job.ID, handlerErr.Error()); err != nil {
		log.Printf("Failed to mark job %d failed: %s", job.ID, err)
	}
	s.enqueueNext(ctx, job)
}

// enqueueNext ставит следующий экземпляр самовозобновляемой задачи.
// Данные не переносятся: размер следующей порции выводится из текущей
// загрузки при claim, а не наследуется от прошлого экземпляра.
func (s *Scheduler) enqueueNext(ctx context.Context, job *models.QueueJob) {
	if !s.recurring[job.JobType] {
		return
	}
	if _, err := s.queue.Enqueue(ctx, job.JobType, nil, job.Priority, s.values.MaxAttempts); err != nil {
		log.Printf("Failed to enqueue next %s job: %s", job.JobType, err)
	}
}

func (s *Scheduler) scheduleNext() {
	if s.resched != nil {
		s.resched.ScheduleTick(time.Duration(s.values.TickIntervalSec) * time.Second)
	}
}

// backoffDelay — экспоненциальная задержка: 60 × 2^attempts секунд.
func backoffDelay(attempts int) time.Duration {
	return time.Duration(60*(int64(1)<<uint(attempts))) * time.Second
}

// ConcurrencyCap выводит предел одновременно выполняемых задач из оценки
// загрузки.
func (s *Scheduler) ConcurrencyCap(load float64) int {
	switch {
	case load < 0.5:
		return 3
	case load < 1.0:
		return 2
	default:
		return 1
	}
}

// OptimalBatchSize ограничивает худшее время обработки одного Tick под
// нагрузкой: при низкой загрузке базовый размер удваивается, при высокой —
// половинится, с полом и потолком из настроек.
func (s *Scheduler) OptimalBatchSize(load float64) int {
	base := s.values.BaseBatchSize
	var size int
	switch {
	case load < 0.3:
		size = base * 2
	case load < 0.7:
		size = base
	default:
		size = base / 2
	}
	if size < s.values.MinBatchSize {
		size = s.values.MinBatchSize
	}
	if size > s.values.MaxBatchSize {
		size = s.values.MaxBatchSize
	}
	return size
}

// capImportBatch урезает запрошенный размер порции batch_import до
// оптимального для текущей загрузки.
func (s *Scheduler) capImportBatch(jobData json.RawMessage, optimal int) json.RawMessage {
	params := map[string]interface{}{}
	if len(jobData) > 0 {
		if err := json.Unmarshal(jobData, &params); err != nil {
			params = map[string]interface{}{}
		}
	}
	limit := optimal
	if requested, ok := params["limit"].(float64); ok && int(requested) > 0 && int(requested) < optimal {
		limit = int(requested)
	}
	params["limit"] = limit
	capped, err := json.Marshal(params)
	if err != nil {
		return jobData
	}
	return capped
}

// Cleanup выкидывает терминальные задачи и устаревшую статистику.
// Идемпотентен, безопасен одновременно с Tick.
func (s *Scheduler) Cleanup(ctx context.Context) error {
	jobs, err := s.queue.PurgeFinished(ctx, time.Duration(s.values.JobRetentionDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("job cleanup failed: %w", err)
	}
	stats, err := s.stats.Purge(ctx, time.Duration(s.values.StatRetentionDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("stat cleanup failed: %w", err)
	}
	log.Printf("Cleanup removed %d jobs and %d stat rows", jobs, stats)
	return nil
}

// JobStatus возвращает задачу по id для операционных вызовов.
func (s *Scheduler) JobStatus(ctx context.Context, id int64) (*models.QueueJob, error) {
	return s.queue.JobByID(ctx, id)
}

// QueueSummary — количество задач по статусам.
func (s *Scheduler) QueueSummary(ctx context.Context) (map[models.JobStatus]int, error) {
	return s.queue.SummaryCounts(ctx)
}

// PerformanceSummary — агрегаты по типам задач за скользящее окно.
func (s *Scheduler) PerformanceSummary(ctx context.Context, window time.Duration) ([]models.PerformanceSummary, error) {
	return s.stats.Summary(ctx, window)
}
