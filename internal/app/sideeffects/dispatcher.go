package sideeffects

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"rentops/internal/domain/shared/events"
)

// Handler reacts to one committed domain event. Handlers ignore events they
// do not care about and must be safe to run more than once for the same event.
type Handler interface {
	Name() string
	Handle(ctx context.Context, ev events.DomainEvent) error
}

type Failure struct {
	Handler   string
	Event     string
	Aggregate string
	Err       error
}

// Report lists the handlers that failed for a dispatch. It is informational:
// the state change that produced the events has already been committed.
type Report struct {
	Handled  int
	Failures []Failure
}

func (r Report) OK() bool { return len(r.Failures) == 0 }

// Dispatcher fans committed events out to handlers. Ledger handlers run for
// every event before any other handler. Every call is isolated: an error or
// panic is logged and recorded in the report, and the remaining handlers run.
type Dispatcher struct {
	Ledger  []Handler
	Effects []Handler
	Logger  *slog.Logger
}

func (d *Dispatcher) Dispatch(ctx context.Context, evs []events.DomainEvent) Report {
	var report Report
	if d == nil || len(evs) == 0 {
		return report
	}
	// the caller may have answered its client already
	ctx = context.WithoutCancel(ctx)
	for _, group := range [][]Handler{d.Ledger, d.Effects} {
		for _, ev := range evs {
			for _, h := range group {
				if err := d.run(ctx, h, ev); err != nil {
					report.Failures = append(report.Failures, Failure{
						Handler:   h.Name(),
						Event:     ev.EventName(),
						Aggregate: ev.AggregateID(),
						Err:       err,
					})
					continue
				}
				report.Handled++
			}
		}
	}
	return report
}

func (d *Dispatcher) run(ctx context.Context, h Handler, ev events.DomainEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sideeffects: %s panicked: %v", h.Name(), rec)
			d.logger().Error("side effect panicked",
				"handler", h.Name(),
				"event", ev.EventName(),
				"booking_id", ev.AggregateID(),
				"panic", rec,
				"stack", string(debug.Stack()))
		}
	}()
	if err = h.Handle(ctx, ev); err != nil {
		d.logger().Error("side effect failed",
			"handler", h.Name(),
			"event", ev.EventName(),
			"booking_id", ev.AggregateID(),
			"error", err)
	}
	return err
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
