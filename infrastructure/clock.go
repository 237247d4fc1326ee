package infrastructure

import (
	"time"

	"drawdown/domain/interfaces"
)

// SystemClock implements interfaces.Clock on the real time package.
type SystemClock struct{}

// NewSystemClock returns the real-time clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (SystemClock) AfterFunc(d time.Duration, f func()) interfaces.Timer {
	return time.AfterFunc(d, f)
}
