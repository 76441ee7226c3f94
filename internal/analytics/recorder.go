package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder writes events off the request path. Failures are logged and
// never reach the caller.
type Recorder struct {
	Service AnalyticsService
	Logger  *zap.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

// NewRecorder wraps svc. A nil svc makes every call a no-op.
func NewRecorder(svc AnalyticsService, logger *zap.Logger) *Recorder {
	return &Recorder{Service: svc, Logger: logger, Timeout: 5 * time.Second}
}

func (r *Recorder) run(eventType string, fn func(ctx context.Context) error) {
	if r == nil || r.Service == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
		defer cancel()
		if err := fn(ctx); err != nil && !errors.Is(err, ErrUnavailable) {
			r.Logger.Warn("analytics record failed", zap.String("event_type", eventType), zap.Error(err))
		}
	}()
}

// Plan records ev asynchronously.
func (r *Recorder) Plan(ev PlanEvent) {
	r.run(EventPlanGenerated, func(ctx context.Context) error {
		return r.Service.RecordPlan(ctx, ev)
	})
}

// Placement records ev asynchronously.
func (r *Recorder) Placement(ev PlacementEvent) {
	r.run(EventPlacementBooked, func(ctx context.Context) error {
		return r.Service.RecordPlacement(ctx, ev)
	})
}

// Wait blocks until pending writes finish.
func (r *Recorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}
