package scheduler

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// SystemLoad оценивает загрузку: load average, нормированный на число CPU,
// когда /proc/loadavg доступен, иначе отношение занятой кучи процесса к
// выделенной у ОС памяти.
type SystemLoad struct{}

func NewSystemLoad() *SystemLoad {
	return &SystemLoad{}
}

func (l *SystemLoad) Load() float64 {
	if avg, err := readLoadAvg(); err == nil {
		return avg / float64(runtime.NumCPU())
	}
	return memoryUsageRatio()
}

func readLoadAvg() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, os.ErrInvalid
	}
	return strconv.ParseFloat(fields[0], 64)
}

func memoryUsageRatio() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if stats.Sys == 0 {
		return 0
	}
	return float64(stats.HeapAlloc) / float64(stats.Sys)
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}
