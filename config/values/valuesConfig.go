package values

type Config interface {
}

// SyncValues — настройки нормализации и ценообразования, передаются адаптерам
// и ценовому движку при конструировании, без чтения глобального состояния.
type SyncValues struct {
	MarginPercent     float64  `yaml:"margin-percent"`
	PassThroughBrands []string `yaml:"pass-through-brands"`
	DescriptionLimit  int      `yaml:"description-limit"`
}

func DefaultSyncValues() SyncValues {
	return SyncValues{
		MarginPercent:     20,
		PassThroughBrands: []string{"Mediolano"},
		DescriptionLimit:  2000,
	}
}

// QueueValues — пороги планировщика и размеры пакетов.
type QueueValues struct {
	BaseBatchSize     int `yaml:"base-batch-size"`
	MinBatchSize      int `yaml:"min-batch-size"`
	MaxBatchSize      int `yaml:"max-batch-size"`
	MaxAttempts       int `yaml:"max-attempts"`
	TickIntervalSec   int `yaml:"tick-interval-sec"`
	JobRetentionDays  int `yaml:"job-retention-days"`
	StatRetentionDays int `yaml:"stat-retention-days"`
}

func DefaultQueueValues() QueueValues {
	return QueueValues{
		BaseBatchSize:     50,
		MinBatchSize:      10,
		MaxBatchSize:      100,
		MaxAttempts:       3,
		TickIntervalSec:   5,
		JobRetentionDays:  7,
		StatRetentionDays: 30,
	}
}
