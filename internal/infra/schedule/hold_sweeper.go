package schedule

import (
	"context"
	"log/slog"
	"time"

	"rentops/internal/app/dto"
	"rentops/internal/app/policies"
)

type SweepFunc func(ctx context.Context) (dto.BulkResult, error)

// HoldSweeper cancels expired holds on a fixed interval as the system principal.
type HoldSweeper struct {
	Sweep    SweepFunc
	Interval time.Duration
	Logger   *slog.Logger
}

func (s HoldSweeper) Run(ctx context.Context) error {
	if s.Interval <= 0 || s.Sweep == nil {
		return nil
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s HoldSweeper) RunOnce(ctx context.Context) dto.BulkResult {
	ctx = policies.ContextWithPrincipal(ctx, policies.SystemPrincipal())
	res, err := s.Sweep(ctx)
	if s.Logger == nil {
		return res
	}
	if err != nil {
		s.Logger.Error("hold sweep failed", "error", err)
		return res
	}
	if res.SuccessCount > 0 || res.FailCount > 0 {
		s.Logger.Info("hold sweep finished", "cancelled", res.SuccessCount, "failed", res.FailCount)
	}
	return res
}
