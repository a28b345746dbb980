package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentops/internal/domain/availability"
	domainrange "rentops/internal/domain/shared/daterange"
)

const ledgerCollection = "availability_cells"

// LedgerRepository stores one document per blocked (property, day).
// Available days have no document.
type LedgerRepository struct {
	col   *mongo.Collection
	clock func() time.Time
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: db.Collection(ledgerCollection), clock: time.Now}
}

func ledgerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "source", Value: 1}, {Key: "ref", Value: 1}}},
	}
}

type cellDocument struct {
	ID         string    `bson:"_id"`
	PropertyID string    `bson:"property_id"`
	Date       time.Time `bson:"date"`
	Blocked    bool      `bson:"blocked"`
	Source     string    `bson:"source"`
	Ref        string    `bson:"ref"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func cellID(propertyID string, day time.Time) string {
	return propertyID + ":" + day.Format(domainrange.DayLayout)
}

func (r *LedgerRepository) Block(ctx context.Context, propertyID string, dr domainrange.DateRange, opts domainavailability.BlockOptions) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if opts.Ref == "" {
		return domainavailability.ErrRefRequired
	}
	existing, err := r.find(ctx, rangeFilter(propertyID, dr))
	if err != nil {
		return err
	}
	keepExternal := make(map[time.Time]struct{})
	refs := make(map[string]struct{})
	for _, cell := range existing {
		if cell.Source == domainavailability.SourceExternal {
			keepExternal[domainrange.Day(cell.Date)] = struct{}{}
			refs[cell.Ref] = struct{}{}
		}
	}
	if opts.ClearExternalBlocks && len(refs) > 0 {
		for ref := range refs {
			if err := r.ReleaseExternal(ctx, propertyID, ref); err != nil {
				return err
			}
		}
		keepExternal = map[time.Time]struct{}{}
	}
	return r.upsert(ctx, propertyID, dr, domainavailability.SourceReservation, opts.Ref, keepExternal)
}

// Release deletes the range unconditionally, so releasing twice is a no-op.
func (r *LedgerRepository) Release(ctx context.Context, propertyID string, dr domainrange.DateRange) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	_, err := r.col.DeleteMany(ctx, rangeFilter(propertyID, dr))
	return err
}

func (r *LedgerRepository) BlockExternal(ctx context.Context, propertyID string, dr domainrange.DateRange, ref string) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if ref == "" {
		return domainavailability.ErrRefRequired
	}
	existing, err := r.find(ctx, rangeFilter(propertyID, dr))
	if err != nil {
		return err
	}
	owned := make(map[time.Time]struct{})
	for _, cell := range existing {
		if cell.Source == domainavailability.SourceReservation {
			owned[domainrange.Day(cell.Date)] = struct{}{}
		}
	}
	return r.upsert(ctx, propertyID, dr, domainavailability.SourceExternal, ref, owned)
}

func (r *LedgerRepository) ReleaseExternal(ctx context.Context, propertyID string, ref string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{
		"property_id": propertyID,
		"source":      string(domainavailability.SourceExternal),
		"ref":         ref,
	})
	return err
}

func (r *LedgerRepository) Cells(ctx context.Context, propertyID string, dr domainrange.DateRange) ([]domainavailability.Cell, error) {
	return r.find(ctx, rangeFilter(propertyID, dr))
}

func (r *LedgerRepository) All(ctx context.Context, propertyID string) ([]domainavailability.Cell, error) {
	return r.find(ctx, bson.M{"property_id": propertyID})
}

func (r *LedgerRepository) upsert(ctx context.Context, propertyID string, dr domainrange.DateRange, source domainavailability.Source, ref string, skip map[time.Time]struct{}) error {
	now := r.clock().UTC()
	var models []mongo.WriteModel
	for _, day := range dr.Days() {
		if _, ok := skip[day]; ok {
			continue
		}
		doc := cellDocument{
			ID:         cellID(propertyID, day),
			PropertyID: propertyID,
			Date:       day,
			Blocked:    true,
			Source:     string(source),
			Ref:        ref,
			UpdatedAt:  now,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *LedgerRepository) find(ctx context.Context, filter bson.M) ([]domainavailability.Cell, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []cellDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domainavailability.Cell, 0, len(docs))
	for _, d := range docs {
		out = append(out, domainavailability.Cell{
			PropertyID: d.PropertyID,
			Date:       domainrange.Day(d.Date),
			Blocked:    d.Blocked,
			Source:     domainavailability.Source(d.Source),
			Ref:        d.Ref,
			UpdatedAt:  d.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func rangeFilter(propertyID string, dr domainrange.DateRange) bson.M {
	return bson.M{
		"property_id": propertyID,
		"date":        bson.M{"$gte": dr.CheckIn, "$lt": dr.CheckOut},
	}
}

var _ domainavailability.Ledger = (*LedgerRepository)(nil)
