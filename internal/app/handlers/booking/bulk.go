package booking

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"rentops/internal/app/dto"
	domainbooking "rentops/internal/domain/booking"
)

// BulkCancel cancels pending and on-hold bookings. Each id is processed on
// its own; ineligible ids are counted as failures and left untouched.
func (l *Lifecycle) BulkCancel(ctx context.Context, cmd BulkCancelCommand) (dto.BulkResult, error) {
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.BulkResult{}, err
	}
	return l.bulk(ctx, cmd.BookingIDs, domainbooking.ActionBulkCancel, cmd.Reason), nil
}

// BulkComplete completes confirmed bookings whose checkout day has passed.
func (l *Lifecycle) BulkComplete(ctx context.Context, cmd BulkCompleteCommand) (dto.BulkResult, error) {
	if _, err := l.requireAdmin(ctx); err != nil {
		return dto.BulkResult{}, err
	}
	return l.bulk(ctx, cmd.BookingIDs, domainbooking.ActionBulkComplete, ""), nil
}

func (l *Lifecycle) bulk(ctx context.Context, ids []string, action domainbooking.Action, note string) dto.BulkResult {
	result := l.bulkWith(ctx, ids, func(ctx context.Context, id domainbooking.BookingID) error {
		_, err := l.apply(ctx, id, action, note)
		return err
	})
	l.logger().Info("bulk operation finished",
		"action", action,
		"success_count", result.SuccessCount,
		"fail_count", result.FailCount)
	return result
}

// bulkWith runs fn for every distinct id with bounded concurrency and
// collects per-item outcomes.
func (l *Lifecycle) bulkWith(ctx context.Context, ids []string, fn func(ctx context.Context, id domainbooking.BookingID) error) dto.BulkResult {
	ids = uniqueIDs(ids)
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(l.bulkConcurrency())
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = fn(ctx, domainbooking.BookingID(id))
			// a failed item never stops the batch
			return nil
		})
	}
	_ = g.Wait()

	result := dto.BulkResult{Succeeded: []string{}, Failures: []dto.BulkFailure{}}
	for i, id := range ids {
		if errs[i] != nil {
			result.FailCount++
			result.Failures = append(result.Failures, dto.BulkFailure{BookingID: id, Error: errs[i].Error()})
			continue
		}
		result.SuccessCount++
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
