package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "rentops/internal/domain/property"
)

type PropertyDirectory struct {
	col *mongo.Collection
}

func NewPropertyDirectory(db *mongo.Database) *PropertyDirectory {
	return &PropertyDirectory{col: db.Collection("properties")}
}

type propertyDocument struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Currency string `bson:"currency"`
	Active   bool   `bson:"active"`
}

func (d *PropertyDirectory) ByID(ctx context.Context, id string) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := d.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return &domainproperty.Property{ID: doc.ID, Name: doc.Name, Currency: doc.Currency, Active: doc.Active}, nil
}

func (d *PropertyDirectory) Save(ctx context.Context, p domainproperty.Property) error {
	doc := propertyDocument{ID: p.ID, Name: p.Name, Currency: p.Currency, Active: p.Active}
	_, err := d.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

var _ domainproperty.Directory = (*PropertyDirectory)(nil)
