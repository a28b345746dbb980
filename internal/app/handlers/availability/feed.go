package availability

import (
	"context"
	"fmt"
	"strings"

	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
)

// FeedEvent is one change from an imported channel-manager calendar.
type FeedEvent struct {
	EventID    string `json:"event_id"`
	PropertyID string `json:"property_id"`
	Ref        string `json:"ref"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Removed    bool   `json:"removed"`
}

// ApplyFeedEvent records or removes an external block. Deliveries are
// deduplicated by event id; a failed delivery is forgotten so a redelivery
// is processed again.
func (s *Service) ApplyFeedEvent(ctx context.Context, ev FeedEvent) (err error) {
	if err := s.ready(); err != nil {
		return err
	}
	if err := validateFeedEvent(ev); err != nil {
		return err
	}
	if s.Inbox != nil && ev.EventID != "" {
		seen, err := s.Inbox.Seen(ctx, ev.EventID)
		if err != nil {
			return fmt.Errorf("inbox: %w", err)
		}
		if seen {
			s.logger().Debug("feed event already applied", "event_id", ev.EventID)
			return nil
		}
		defer func() {
			if err == nil {
				return
			}
			if forgetErr := s.Inbox.Forget(ctx, ev.EventID); forgetErr != nil {
				s.logger().Warn("inbox entry not released", "event_id", ev.EventID, "error", forgetErr)
			}
		}()
	}

	now := s.now()
	if ev.Removed {
		if err := s.Ledger.ReleaseExternal(ctx, ev.PropertyID, ev.Ref); err != nil {
			return fmt.Errorf("release external %s: %w", ev.Ref, err)
		}
		s.publish(ctx, domainavailability.ExternalReleased{PropertyID: ev.PropertyID, Ref: ev.Ref, At: now})
		return nil
	}
	r, _ := daterange.Parse(ev.CheckIn, ev.CheckOut)
	if err := s.Ledger.BlockExternal(ctx, ev.PropertyID, r, ev.Ref); err != nil {
		return fmt.Errorf("block external %s: %w", ev.Ref, err)
	}
	s.publish(ctx, domainavailability.ExternalBlocked{PropertyID: ev.PropertyID, Ref: ev.Ref, Range: r, At: now})
	return nil
}

func validateFeedEvent(ev FeedEvent) error {
	if strings.TrimSpace(ev.PropertyID) == "" {
		return domainbooking.Invalid("property_id", "required")
	}
	if strings.TrimSpace(ev.Ref) == "" {
		return domainbooking.InvalidCause("ref", domainavailability.ErrRefRequired)
	}
	if ev.Removed {
		return nil
	}
	if _, err := daterange.Parse(ev.CheckIn, ev.CheckOut); err != nil {
		return domainbooking.InvalidCause("dates", err)
	}
	return nil
}
