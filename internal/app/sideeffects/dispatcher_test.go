package sideeffects

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/app/policies"
	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/events"
)

var at = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type recordingHandler struct {
	name  string
	err   error
	panic bool
	calls *[]string
}

func (h recordingHandler) Name() string { return h.name }

func (h recordingHandler) Handle(_ context.Context, ev events.DomainEvent) error {
	*h.calls = append(*h.calls, h.name+":"+ev.EventName())
	if h.panic {
		panic("boom")
	}
	return h.err
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func snapshot(t *testing.T, status domainbooking.Status) domainbooking.Snapshot {
	t.Helper()
	dr, err := daterange.Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	return domainbooking.Snapshot{BookingID: "bk-1", PropertyID: "villa-1", Status: status, Range: dr, Source: domainbooking.SourceManual}
}

func TestDispatcher_LedgerRunsFirstAndFailuresAreIsolated(t *testing.T) {
	var calls []string
	d := &Dispatcher{
		Ledger: []Handler{recordingHandler{name: "ledger", err: errors.New("ledger down"), calls: &calls}},
		Effects: []Handler{
			recordingHandler{name: "crm", panic: true, calls: &calls},
			recordingHandler{name: "notify", calls: &calls},
		},
		Logger: silentLogger(),
	}
	ev := domainbooking.Cancelled{Booking: snapshot(t, domainbooking.StatusCancelled), PreviousStatus: domainbooking.StatusConfirmed, At: at}

	report := d.Dispatch(context.Background(), []events.DomainEvent{ev})

	assert.Equal(t, []string{"ledger:booking.cancelled", "crm:booking.cancelled", "notify:booking.cancelled"}, calls)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "ledger", report.Failures[0].Handler)
	assert.Equal(t, "crm", report.Failures[1].Handler)
	assert.Contains(t, report.Failures[1].Err.Error(), "panicked")
	assert.Equal(t, 1, report.Handled)
	assert.False(t, report.OK())
}

func TestDispatcher_IgnoresCancelledContext(t *testing.T) {
	var calls []string
	d := &Dispatcher{Effects: []Handler{ctxCheck{calls: &calls}}, Logger: silentLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := d.Dispatch(ctx, []events.DomainEvent{domainbooking.Completed{Booking: snapshot(t, domainbooking.StatusCompleted), At: at}})
	assert.True(t, report.OK())
	assert.Len(t, calls, 1)
}

type ctxCheck struct{ calls *[]string }

func (ctxCheck) Name() string { return "ctx" }

func (c ctxCheck) Handle(ctx context.Context, ev events.DomainEvent) error {
	*c.calls = append(*c.calls, ev.EventName())
	return ctx.Err()
}

type fakeLedger struct {
	blocked  []domainavailability.BlockOptions
	released []daterange.DateRange
}

func (f *fakeLedger) Block(_ context.Context, _ string, _ daterange.DateRange, opts domainavailability.BlockOptions) error {
	f.blocked = append(f.blocked, opts)
	return nil
}

func (f *fakeLedger) Release(_ context.Context, _ string, r daterange.DateRange) error {
	f.released = append(f.released, r)
	return nil
}

func (f *fakeLedger) BlockExternal(context.Context, string, daterange.DateRange, string) error {
	return nil
}

func (f *fakeLedger) ReleaseExternal(context.Context, string, string) error { return nil }

func (f *fakeLedger) Cells(context.Context, string, daterange.DateRange) ([]domainavailability.Cell, error) {
	return nil, nil
}

func (f *fakeLedger) All(context.Context, string) ([]domainavailability.Cell, error) {
	return nil, nil
}

func TestLedgerHandler(t *testing.T) {
	ledger := &fakeLedger{}
	h := LedgerHandler{Ledger: ledger}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, domainbooking.Created{Booking: snapshot(t, domainbooking.StatusPending), At: at}))
	assert.Empty(t, ledger.blocked, "pending bookings do not block")

	require.NoError(t, h.Handle(ctx, domainbooking.Created{Booking: snapshot(t, domainbooking.StatusConfirmed), At: at}))
	require.Len(t, ledger.blocked, 1)
	assert.True(t, ledger.blocked[0].ClearExternalBlocks)
	assert.Equal(t, "bk-1", ledger.blocked[0].Ref)

	require.NoError(t, h.Handle(ctx, domainbooking.HoldConverted{Booking: snapshot(t, domainbooking.StatusConfirmed), At: at}))
	assert.Empty(t, ledger.released, "conversion keeps the dates")

	require.NoError(t, h.Handle(ctx, domainbooking.Cancelled{Booking: snapshot(t, domainbooking.StatusCancelled), PreviousStatus: domainbooking.StatusPending, At: at}))
	assert.Empty(t, ledger.released, "pending never owned the dates")

	require.NoError(t, h.Handle(ctx, domainbooking.Cancelled{Booking: snapshot(t, domainbooking.StatusCancelled), PreviousStatus: domainbooking.StatusOnHold, At: at}))
	assert.Len(t, ledger.released, 1)
}

type fakeCRM struct{ upserts, reversals int }

func (f *fakeCRM) UpsertFromBooking(context.Context, domainbooking.Snapshot) error {
	f.upserts++
	return nil
}

func (f *fakeCRM) ReverseBooking(context.Context, domainbooking.Snapshot) error {
	f.reversals++
	return nil
}

func TestCRMHandler_ReversesOnlyPendingAndHolds(t *testing.T) {
	crm := &fakeCRM{}
	h := CRMHandler{CRM: crm}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, domainbooking.Created{Booking: snapshot(t, domainbooking.StatusOnHold)}))
	for _, prev := range []domainbooking.Status{domainbooking.StatusPending, domainbooking.StatusOnHold, domainbooking.StatusConfirmed} {
		require.NoError(t, h.Handle(ctx, domainbooking.Cancelled{Booking: snapshot(t, domainbooking.StatusCancelled), PreviousStatus: prev}))
	}
	assert.Equal(t, 1, crm.upserts)
	assert.Equal(t, 2, crm.reversals)
}

type fakeSync struct{ updates []policies.CalendarUpdate }

func (f *fakeSync) Push(_ context.Context, u policies.CalendarUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

func TestCalendarSyncHandler_HoldConversionIsFirm(t *testing.T) {
	sync := &fakeSync{}
	h := CalendarSyncHandler{Sync: sync}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, domainbooking.Created{Booking: snapshot(t, domainbooking.StatusOnHold), At: at}))
	require.NoError(t, h.Handle(ctx, domainbooking.HoldConverted{Booking: snapshot(t, domainbooking.StatusConfirmed), At: at}))

	require.Len(t, sync.updates, 2)
	assert.True(t, sync.updates[0].Blocked)
	assert.False(t, sync.updates[0].Firm)
	assert.True(t, sync.updates[1].Firm)
}
