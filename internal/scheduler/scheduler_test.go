package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goproductsync_api/config/values"
	"goproductsync_api/internal/core/models"
)

type rescheduleCall struct {
	id    int64
	delay time.Duration
	msg   string
}

type stubQueue struct {
	jobs       []*models.QueueJob
	running    int
	runningErr error

	claimCalls  int
	enqueued    []*models.QueueJob
	completed   []int64
	rescheduled []rescheduleCall
	failed      map[int64]string
	purgedAfter time.Duration
}

func (q *stubQueue) Enqueue(ctx context.Context, jobType string, jobData json.RawMessage, priority, maxAttempts int) (int64, error) {
	job := &models.QueueJob{
		ID:          int64(len(q.enqueued) + 1),
		JobType:     jobType,
		JobData:     jobData,
		Priority:    priority,
		MaxAttempts: maxAttempts,
		Status:      models.JobPending,
	}
	q.enqueued = append(q.enqueued, job)
	return job.ID, nil
}

func (q *stubQueue) ClaimNext(ctx context.Context) (*models.QueueJob, error) {
	q.claimCalls++
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	job.Attempts++
	job.Status = models.JobRunning
	return job, nil
}

func (q *stubQueue) MarkCompleted(ctx context.Context, id int64) error {
	q.completed = append(q.completed, id)
	return nil
}

func (q *stubQueue) Reschedule(ctx context.Context, id int64, delay time.Duration, errMsg string) error {
	q.rescheduled = append(q.rescheduled, rescheduleCall{id: id, delay: delay, msg: errMsg})
	return nil
}

func (q *stubQueue) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	if q.failed == nil {
		q.failed = make(map[int64]string)
	}
	q.failed[id] = errMsg
	return nil
}

func (q *stubQueue) RunningCount(ctx context.Context) (int, error) {
	return q.running, q.runningErr
}

func (q *stubQueue) JobByID(ctx context.Context, id int64) (*models.QueueJob, error) {
	for _, job := range q.enqueued {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, nil
}

func (q *stubQueue) SummaryCounts(ctx context.Context) (map[models.JobStatus]int, error) {
	return map[models.JobStatus]int{models.JobPending: len(q.jobs)}, nil
}

func (q *stubQueue) PurgeFinished(ctx context.Context, olderThan time.Duration) (int64, error) {
	q.purgedAfter = olderThan
	return 2, nil
}

type stubStats struct {
	inserted    []*models.PerformanceStat
	purgedAfter time.Duration
}

func (s *stubStats) Insert(ctx context.Context, stat *models.PerformanceStat) error {
	s.inserted = append(s.inserted, stat)
	return nil
}

func (s *stubStats) Summary(ctx context.Context, window time.Duration) ([]models.PerformanceSummary, error) {
	return nil, nil
}

func (s *stubStats) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.purgedAfter = olderThan
	return 5, nil
}

type stubLoad struct {
	value float64
}

func (l stubLoad) Load() float64 { return l.value }

type stubResched struct {
	delays []time.Duration
}

func (r *stubResched) ScheduleTick(delay time.Duration) {
	r.delays = append(r.delays, delay)
}

func newTestScheduler(queue *stubQueue, stats *stubStats, load float64) (*Scheduler, *stubResched) {
	resched := &stubResched{}
	return NewScheduler(queue, stats, stubLoad{value: load}, resched, values.DefaultQueueValues()), resched
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 60*time.Second, backoffDelay(0))
	assert.Equal(t, 120*time.Second, backoffDelay(1))
	assert.Equal(t, 240*time.Second, backoffDelay(2))
	assert.Equal(t, 1920*time.Second, backoffDelay(5))
}

func TestConcurrencyCap(t *testing.T) {
	s, _ := newTestScheduler(&stubQueue{}, &stubStats{}, 0)

	assert.Equal(t, 3, s.ConcurrencyCap(0.0))
	assert.Equal(t, 3, s.ConcurrencyCap(0.49))
	assert.Equal(t, 2, s.ConcurrencyCap(0.5))
	assert.Equal(t, 2, s.ConcurrencyCap(0.99))
	assert.Equal(t, 1, s.ConcurrencyCap(1.0))
	assert.Equal(t, 1, s.ConcurrencyCap(2.5))
}

func TestOptimalBatchSize(t *testing.T) {
	s, _ := newTestScheduler(&stubQueue{}, &stubStats{}, 0)

	// base 50, min 10, max 100
	assert.Equal(t, 100, s.OptimalBatchSize(0.1))
	assert.Equal(t, 50, s.OptimalBatchSize(0.5))
	assert.Equal(t, 25, s.OptimalBatchSize(0.9))

	v := values.DefaultQueueValues()
	v.BaseBatchSize = 80
	wide := NewScheduler(&stubQueue{}, &stubStats{}, stubLoad{}, nil, v)
	assert.Equal(t, 100, wide.OptimalBatchSize(0.1))

	v.BaseBatchSize = 12
	narrow := NewScheduler(&stubQueue{}, &stubStats{}, stubLoad{}, nil, v)
	assert.Equal(t, 10, narrow.OptimalBatchSize(0.9))
}

func TestTickCompletesJob(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{ID: 11, JobType: "noop", MaxAttempts: 3}}}
	stats := &stubStats{}
	s, resched := newTestScheduler(queue, stats, 0.2)
	s.RegisterHandler("noop", func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{BatchSize: 5, SuccessCount: 5}, nil
	})

	require.NoError(t, s.Tick(context.Background()))

	assert.Equal(t, []int64{11}, queue.completed)
	require.Len(t, stats.inserted, 1)
	assert.Equal(t, "noop", stats.inserted[0].JobType)
	assert.Equal(t, 5, stats.inserted[0].BatchSize)
	assert.Equal(t, 5, stats.inserted[0].SuccessCount)

	// tick всегда перепланирует себя
	require.Len(t, resched.delays, 1)
	assert.Equal(t, 5*time.Second, resched.delays[0])
}

func TestTickReschedulesFailedJob(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{ID: 21, JobType: "noop", MaxAttempts: 3}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)
	s.RegisterHandler("noop", func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{}, errors.New("catalog timeout")
	})

	require.NoError(t, s.Tick(context.Background()))

	// первая неудача: attempts=1, задержка 60×2^1
	require.Len(t, queue.rescheduled, 1)
	assert.Equal(t, int64(21), queue.rescheduled[0].id)
	assert.Equal(t, 120*time.Second, queue.rescheduled[0].delay)
	assert.Equal(t, "catalog timeout", queue.rescheduled[0].msg)
	assert.Empty(t, queue.failed)
	assert.Empty(t, queue.completed)
}

func TestTickFailsJobPermanentlyAtMaxAttempts(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{ID: 31, JobType: "noop", Attempts: 2, MaxAttempts: 3}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)
	s.RegisterHandler("noop", func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{}, errors.New("still broken")
	})

	require.NoError(t, s.Tick(context.Background()))

	assert.Empty(t, queue.rescheduled)
	assert.Equal(t, "still broken", queue.failed[31])
}

func TestTickSkipsAtCapacity(t *testing.T) {
	queue := &stubQueue{running: 3, jobs: []*models.QueueJob{{ID: 41, JobType: "noop"}}}
	s, resched := newTestScheduler(queue, &stubStats{}, 0.2)

	require.NoError(t, s.Tick(context.Background()))

	assert.Zero(t, queue.claimCalls)
	require.Len(t, resched.delays, 1)
}

func TestTickRunsUnderHighLoadCap(t *testing.T) {
	// при load >= 1.0 лимит равен 1: одна бегущая задача блокирует claim
	queue := &stubQueue{running: 1, jobs: []*models.QueueJob{{ID: 51, JobType: "noop"}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 1.5)

	require.NoError(t, s.Tick(context.Background()))
	assert.Zero(t, queue.claimCalls)
}

func TestTickEmptyQueueIsNoop(t *testing.T) {
	queue := &stubQueue{}
	s, resched := newTestScheduler(queue, &stubStats{}, 0.2)

	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, 1, queue.claimCalls)
	assert.Empty(t, queue.completed)
	require.Len(t, resched.delays, 1)
}

func TestTickCapsImportBatchSize(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{
		ID:          61,
		JobType:     models.JobTypeBatchImport,
		JobData:     json.RawMessage(`{"limit": 500}`),
		MaxAttempts: 3,
	}}}
	var seenLimit float64
	s, _ := newTestScheduler(queue, &stubStats{}, 0.5)
	s.RegisterHandler(models.JobTypeBatchImport, func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(job.JobData, &params))
		seenLimit = params["limit"].(float64)
		return HandlerResult{}, nil
	})

	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, 50.0, seenLimit)
}

func TestTickKeepsSmallerRequestedBatch(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{
		ID:          62,
		JobType:     models.JobTypeBatchImport,
		JobData:     json.RawMessage(`{"limit": 20}`),
		MaxAttempts: 3,
	}}}
	var seenLimit float64
	s, _ := newTestScheduler(queue, &stubStats{}, 0.5)
	s.RegisterHandler(models.JobTypeBatchImport, func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(job.JobData, &params))
		seenLimit = params["limit"].(float64)
		return HandlerResult{}, nil
	})

	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, 20.0, seenLimit)
}

func TestTickUnknownJobTypeFails(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{ID: 71, JobType: "mystery", Attempts: 2, MaxAttempts: 3}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)

	require.NoError(t, s.Tick(context.Background()))
	assert.Contains(t, queue.failed[71], "unknown job type")
}

func TestRecurringJobReenqueuedAfterCompletion(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{
		ID:          81,
		JobType:     models.JobTypeBatchImport,
		Priority:    models.DefaultJobPriority,
		MaxAttempts: 3,
	}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)
	s.RegisterRecurring(models.JobTypeBatchImport, func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{BatchSize: 10, SuccessCount: 10}, nil
	})

	require.NoError(t, s.Tick(context.Background()))

	// завершённый проход ставит в очередь следующий: записи, оставшиеся
	// Pending, будут выбраны им
	assert.Equal(t, []int64{81}, queue.completed)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, models.JobTypeBatchImport, queue.enqueued[0].JobType)
	assert.Equal(t, models.DefaultJobPriority, queue.enqueued[0].Priority)
	assert.Equal(t, 3, queue.enqueued[0].MaxAttempts)
	assert.Empty(t, queue.enqueued[0].JobData)
}

func TestRecurringJobChainsPastPermanentFailure(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{
		ID:          82,
		JobType:     models.JobTypeBatchImport,
		Attempts:    2,
		MaxAttempts: 3,
	}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)
	s.RegisterRecurring(models.JobTypeBatchImport, func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{}, errors.New("catalog down")
	})

	require.NoError(t, s.Tick(context.Background()))

	// экземпляр окончательно упал, но цепочка проходов не обрывается
	assert.Equal(t, "catalog down", queue.failed[82])
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, models.JobTypeBatchImport, queue.enqueued[0].JobType)
}

func TestRecurringJobNotDuplicatedOnRetry(t *testing.T) {
	queue := &stubQueue{jobs: []*models.QueueJob{{
		ID:          83,
		JobType:     models.JobTypeBatchImport,
		MaxAttempts: 3,
	}}}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)
	s.RegisterRecurring(models.JobTypeBatchImport, func(ctx context.Context, job *models.QueueJob) (HandlerResult, error) {
		return HandlerResult{}, errors.New("transient")
	})

	require.NoError(t, s.Tick(context.Background()))

	// retry с backoff продолжает тот же экземпляр, новый не порождается
	require.Len(t, queue.rescheduled, 1)
	assert.Empty(t, queue.enqueued)
}

func TestSubmitUsesConfiguredMaxAttempts(t *testing.T) {
	queue := &stubQueue{}
	s, _ := newTestScheduler(queue, &stubStats{}, 0.2)

	id, err := s.Submit(context.Background(), models.JobTypeBatchImport, nil, models.DefaultJobPriority)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, 3, queue.enqueued[0].MaxAttempts)
	assert.Equal(t, models.DefaultJobPriority, queue.enqueued[0].Priority)
}

func TestCleanupUsesRetentionWindows(t *testing.T) {
	queue := &stubQueue{}
	stats := &stubStats{}
	s, _ := newTestScheduler(queue, stats, 0.2)

	require.NoError(t, s.Cleanup(context.Background()))
	assert.Equal(t, 7*24*time.Hour, queue.purgedAfter)
	assert.Equal(t, 30*24*time.Hour, stats.purgedAfter)
}
