package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentops/internal/domain/booking"
	domainrange "rentops/internal/domain/shared/daterange"
	"rentops/internal/domain/shared/money"
)

const bookingsCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "hold_until", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.BookingNotFound(id)
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	b.Version = doc.Version
	return nil
}

// Save is a single-document compare-and-set on the version field.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, f domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	filter := bson.M{}
	if f.PropertyID != "" {
		filter["property_id"] = f.PropertyID
	} else if len(f.PropertyIDs) > 0 {
		filter["property_id"] = bson.M{"$in": f.PropertyIDs}
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID                string        `bson:"_id"`
	PropertyID        string        `bson:"property_id"`
	Guest             guestDocument `bson:"guest"`
	Range             rangeDocument `bson:"range"`
	Guests            int           `bson:"guests"`
	Source            string        `bson:"source"`
	Status            string        `bson:"status"`
	HoldUntil         *time.Time    `bson:"hold_until,omitempty"`
	ConvertedFromHold bool          `bson:"converted_from_hold"`
	CancelledAt       *time.Time    `bson:"cancelled_at,omitempty"`
	Notes             string        `bson:"notes"`
	Pricing           pricingDoc    `bson:"pricing"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
	Version           int64         `bson:"version"`
}

type guestDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email,omitempty"`
	Phone string `bson:"phone,omitempty"`
}

// rangeDocument stores calendar days as "YYYY-MM-DD" so ranges survive
// any timezone handling on the driver side.
type rangeDocument struct {
	CheckIn  string `bson:"check_in"`
	CheckOut string `bson:"check_out"`
}

type feeDocument struct {
	Name   string      `bson:"name"`
	Amount money.Money `bson:"amount"`
}

type pricingDoc struct {
	NightlyRate money.Money   `bson:"nightly_rate"`
	Nights      int           `bson:"nights"`
	Fees        []feeDocument `bson:"fees"`
	Total       money.Money   `bson:"total"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	fees := make([]feeDocument, 0, len(b.Pricing.Fees))
	for _, fee := range b.Pricing.Fees {
		fees = append(fees, feeDocument{Name: fee.Name, Amount: fee.Amount})
	}
	return bookingDocument{
		ID:         string(b.ID),
		PropertyID: b.PropertyID,
		Guest:      guestDocument{Name: b.Guest.Name, Email: b.Guest.Email, Phone: b.Guest.Phone},
		Range: rangeDocument{
			CheckIn:  b.Range.CheckIn.Format(domainrange.DayLayout),
			CheckOut: b.Range.CheckOut.Format(domainrange.DayLayout),
		},
		Guests:            b.Guests,
		Source:            string(b.Source),
		Status:            string(b.Status),
		HoldUntil:         b.HoldUntil,
		ConvertedFromHold: b.ConvertedFromHold,
		CancelledAt:       b.CancelledAt,
		Notes:             b.Notes,
		Pricing: pricingDoc{
			NightlyRate: b.Pricing.NightlyRate,
			Nights:      b.Pricing.Nights,
			Fees:        fees,
			Total:       b.Pricing.Total,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.Version,
	}
}

// toAggregate keeps unparseable stored dates as zero values; the overlap
// check reports such bookings as malformed instead of failing the read.
func (d bookingDocument) toAggregate() *domainbooking.Booking {
	in, _ := domainrange.ParseDay(d.Range.CheckIn)
	out, _ := domainrange.ParseDay(d.Range.CheckOut)
	fees := make([]domainbooking.Fee, 0, len(d.Pricing.Fees))
	for _, fee := range d.Pricing.Fees {
		fees = append(fees, domainbooking.Fee{Name: fee.Name, Amount: fee.Amount})
	}
	return &domainbooking.Booking{
		ID:                domainbooking.BookingID(d.ID),
		PropertyID:        d.PropertyID,
		Guest:             domainbooking.GuestContact{Name: d.Guest.Name, Email: d.Guest.Email, Phone: d.Guest.Phone},
		Range:             domainrange.DateRange{CheckIn: in, CheckOut: out},
		Guests:            d.Guests,
		Source:            domainbooking.Source(d.Source),
		Status:            domainbooking.Status(d.Status),
		HoldUntil:         utcPtr(d.HoldUntil),
		ConvertedFromHold: d.ConvertedFromHold,
		CancelledAt:       utcPtr(d.CancelledAt),
		Notes:             d.Notes,
		Pricing: domainbooking.Pricing{
			NightlyRate: d.Pricing.NightlyRate,
			Nights:      d.Pricing.Nights,
			Fees:        fees,
			Total:       d.Pricing.Total,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Version:   d.Version,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
