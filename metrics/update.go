package metrics

import "sync/atomic"

type SyncMetrics struct {
	CreatedCount   atomic.Int32
	UpdatedCount   atomic.Int32
	SkippedCount   atomic.Int32
	ErroredRecords atomic.Int32
}
