package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentops/internal/domain/availability"
	domainbooking "rentops/internal/domain/booking"
	"rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func fixtureBooking(t *testing.T, id, property string, status domainbooking.Status, created time.Time) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(id),
		PropertyID:  property,
		Guest:       domainbooking.GuestContact{Name: "Ana", Email: "Ana@Example.com"},
		Range:       dr,
		Guests:      2,
		Status:      status,
		HoldUntil:   created.Add(24 * time.Hour),
		NightlyRate: money.Must(10000, "EUR"),
		CreatedAt:   created,
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestBookingRepository_OptimisticVersion(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	b := fixtureBooking(t, "bk-1", "villa-1", domainbooking.StatusConfirmed, t0)
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, int64(1), b.Version)
	assert.ErrorIs(t, repo.Create(ctx, b), domainbooking.ErrConcurrentUpdate)

	first, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)

	first.Guests = 3
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Guests = 4
	assert.ErrorIs(t, repo.Save(ctx, second), domainbooking.ErrConcurrentUpdate)

	stored, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Guests)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestBookingRepository_ReadsAreCopies(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, fixtureBooking(t, "bk-1", "villa-1", domainbooking.StatusOnHold, t0)))

	got, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	got.Status = domainbooking.StatusCancelled
	*got.HoldUntil = got.HoldUntil.Add(time.Hour)

	again, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusOnHold, again.Status)
	assert.Equal(t, t0.Add(24*time.Hour), *again.HoldUntil)
}

func TestBookingRepository_ListFiltersAndSorts(t *testing.T) {
	repo := NewBookingRepository()
	repo.Put(fixtureBooking(t, "a", "villa-1", domainbooking.StatusConfirmed, t0))
	repo.Put(fixtureBooking(t, "b", "villa-1", domainbooking.StatusPending, t0.Add(time.Hour)))
	repo.Put(fixtureBooking(t, "c", "villa-2", domainbooking.StatusConfirmed, t0.Add(2*time.Hour)))
	ctx := context.Background()

	all, err := repo.List(ctx, domainbooking.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []domainbooking.BookingID{"c", "b", "a"}, ids(all))

	confirmed, err := repo.List(ctx, domainbooking.ListFilter{PropertyID: "villa-1", Statuses: []domainbooking.Status{domainbooking.StatusConfirmed}})
	require.NoError(t, err)
	assert.Equal(t, []domainbooking.BookingID{"a"}, ids(confirmed))

	limited, err := repo.List(ctx, domainbooking.ListFilter{PropertyIDs: []string{"villa-1", "villa-2"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []domainbooking.BookingID{"c", "b"}, ids(limited))
}

func ids(list []*domainbooking.Booking) []domainbooking.BookingID {
	out := make([]domainbooking.BookingID, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestLedger_BlockNeedsRef(t *testing.T) {
	l := NewLedger()
	dr, err := daterange.Parse("2025-06-01", "2025-06-03")
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, l.Block(ctx, "villa-1", dr, domainavailability.BlockOptions{}), domainavailability.ErrRefRequired)
	require.NoError(t, l.Block(ctx, "villa-1", dr, domainavailability.BlockOptions{Ref: "bk-1"}))
	require.NoError(t, l.Release(ctx, "villa-1", dr))
	require.NoError(t, l.Release(ctx, "villa-1", dr))

	cells, err := l.All(ctx, "villa-1")
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestGuestCRM_CountsEachBookingOnce(t *testing.T) {
	crm := NewGuestCRM()
	ctx := context.Background()
	snap := fixtureBooking(t, "bk-1", "villa-1", domainbooking.StatusConfirmed, t0).Snapshot()

	require.NoError(t, crm.UpsertFromBooking(ctx, snap))
	require.NoError(t, crm.UpsertFromBooking(ctx, snap))

	guest, ok := crm.Guest("ana@example.com")
	require.True(t, ok)
	assert.Equal(t, 1, guest.TotalBookings)
	assert.Equal(t, int64(40000), guest.TotalSpent["EUR"])

	require.NoError(t, crm.ReverseBooking(ctx, snap))
	require.NoError(t, crm.ReverseBooking(ctx, snap))
	guest, _ = crm.Guest("ana@example.com")
	assert.Zero(t, guest.TotalBookings)
	assert.Zero(t, guest.TotalSpent["EUR"])
}

func TestGuestCRM_ReverseUndoesRecordedContribution(t *testing.T) {
	crm := NewGuestCRM()
	ctx := context.Background()
	b := fixtureBooking(t, "bk-1", "villa-1", domainbooking.StatusOnHold, t0)
	require.NoError(t, crm.UpsertFromBooking(ctx, b.Snapshot()))

	edited := b.Snapshot()
	edited.Guest.Email = "ana.new@example.com"
	edited.Total = money.Must(90000, "EUR")
	require.NoError(t, crm.ReverseBooking(ctx, edited))

	guest, ok := crm.Guest("ana@example.com")
	require.True(t, ok)
	assert.Zero(t, guest.TotalBookings)
	assert.Zero(t, guest.TotalSpent["EUR"])
	assert.Empty(t, guest.BookingIDs)
	_, ok = crm.Guest("ana.new@example.com")
	assert.False(t, ok)
}

func TestInbox_SeenAndForget(t *testing.T) {
	inbox := NewInbox()
	ctx := context.Background()

	seen, err := inbox.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, _ = inbox.Seen(ctx, "evt-1")
	assert.True(t, seen)

	require.NoError(t, inbox.Forget(ctx, "evt-1"))
	seen, _ = inbox.Seen(ctx, "evt-1")
	assert.False(t, seen)
}
