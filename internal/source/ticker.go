package source

import (
	"context"
	"time"
)

// Ticker is a periodic counter. It emits Start immediately and then
// Start+Step, Start+2*Step, ... once per Interval.
type Ticker struct {
	Start    int64
	Step     int64
	Interval time.Duration
}

// Run implements Source.
func (t Ticker) Run(ctx context.Context, emit func(int64)) error {
	if t.Interval <= 0 {
		return invalidInterval(t.Interval)
	}

	value := t.Start
	emit(value)

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			value += t.Step
			emit(value)
		}
	}
}
