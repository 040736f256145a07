package scheduler

import (
	"sync"
	"time"
)

// TimerRescheduler — реализация порта Rescheduler на time.AfterFunc:
// очередь дренируется без внешнего постоянного поллинга.
type TimerRescheduler struct {
	mu   sync.Mutex
	tick func()
}

func NewTimerRescheduler() *TimerRescheduler {
	return &TimerRescheduler{}
}

// Bind задаёт вызываемую функцию; до привязки ScheduleTick — no-op.
func (t *TimerRescheduler) Bind(tick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick = tick
}

func (t *TimerRescheduler) ScheduleTick(delay time.Duration) {
	t.mu.Lock()
	tick := t.tick
	t.mu.Unlock()
	if tick == nil {
		return
	}
	time.AfterFunc(delay, tick)
}
