package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentops/internal/app/policies"
	domainbooking "rentops/internal/domain/booking"
)

const (
	guestsCollection        = "guests"
	contributionsCollection = "guest_contributions"
)

// GuestCRM keeps guest aggregates. Each counted booking leaves a
// contribution document so a reversal subtracts what was added, even after
// the booking was repriced or its guest contact changed. Guest updates are
// conditional on the booking id being absent or present in the guest's
// history, which makes them safe to repeat.
type GuestCRM struct {
	guests        *mongo.Collection
	contributions *mongo.Collection
}

func NewGuestCRM(db *mongo.Database) *GuestCRM {
	return &GuestCRM{
		guests:        db.Collection(guestsCollection),
		contributions: db.Collection(contributionsCollection),
	}
}

type contributionDocument struct {
	BookingID string `bson:"_id"`
	GuestKey  string `bson:"guest_key"`
	Currency  string `bson:"currency"`
	Amount    int64  `bson:"amount"`
}

func (c *GuestCRM) UpsertFromBooking(ctx context.Context, b domainbooking.Snapshot) error {
	if _, found, err := c.contribution(ctx, b.BookingID); err != nil || found {
		return err
	}
	filter := bson.M{"_id": b.Guest.Key(), "booking_ids": bson.M{"$ne": string(b.BookingID)}}
	update := bson.M{
		"$set": bson.M{
			"name":  b.Guest.Name,
			"email": b.Guest.Email,
			"phone": b.Guest.Phone,
		},
		"$inc": bson.M{
			"total_bookings":                  1,
			"total_spent." + b.Total.Currency: b.Total.Amount,
		},
		"$push": bson.M{"booking_ids": string(b.BookingID)},
	}
	_, err := c.guests.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	// a duplicate key means the guest exists and already counts this booking
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	doc := contributionDocument{
		BookingID: string(b.BookingID),
		GuestKey:  b.Guest.Key(),
		Currency:  b.Total.Currency,
		Amount:    b.Total.Amount,
	}
	_, err = c.contributions.ReplaceOne(ctx, bson.M{"_id": doc.BookingID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (c *GuestCRM) ReverseBooking(ctx context.Context, b domainbooking.Snapshot) error {
	added, found, err := c.contribution(ctx, b.BookingID)
	if err != nil || !found {
		return err
	}
	filter := bson.M{"_id": added.GuestKey, "booking_ids": added.BookingID}
	update := bson.M{
		"$inc": bson.M{
			"total_bookings":                -1,
			"total_spent." + added.Currency: -added.Amount,
		},
		"$pull": bson.M{"booking_ids": added.BookingID},
	}
	if _, err := c.guests.UpdateOne(ctx, filter, update); err != nil {
		return err
	}
	_, err = c.contributions.DeleteOne(ctx, bson.M{"_id": added.BookingID})
	return err
}

func (c *GuestCRM) contribution(ctx context.Context, id domainbooking.BookingID) (contributionDocument, bool, error) {
	var doc contributionDocument
	err := c.contributions.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, err
	}
	return doc, true, nil
}

var _ policies.GuestCRM = (*GuestCRM)(nil)
