// Package repository provides data access for the chemical catalog.
package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// ErrDuplicate is returned when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// ChemicalsRepository provides methods for chemical catalog operations.
type ChemicalsRepository struct {
	collection *mongo.Collection
}

// NewChemicalsRepository creates a new chemicals repository.
func NewChemicalsRepository(db *MongoDB) *ChemicalsRepository {
	return &ChemicalsRepository{
		collection: db.Chemicals,
	}
}

// Create inserts a new chemical.
func (r *ChemicalsRepository) Create(ctx context.Context, chemical *model.Chemical) error {
	now := time.Now().UTC()
	if chemical.ID.IsZero() {
		chemical.ID = primitive.NewObjectID()
	}
	if chemical.Limits == nil {
		chemical.Limits = []model.RegulationLimit{}
	}
	chemical.CreatedAt = now
	chemical.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, chemical)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// CreateMany inserts chemicals in bulk, skipping names that already exist.
func (r *ChemicalsRepository) CreateMany(ctx context.Context, chemicals []*model.Chemical) error {
	if len(chemicals) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(chemicals))
	for i, c := range chemicals {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		if c.Limits == nil {
			c.Limits = []model.RegulationLimit{}
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		docs[i] = c
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// FindByID returns the chemical or nil when it does not exist.
func (r *ChemicalsRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Chemical, error) {
	var chemical model.Chemical
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chemical)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chemical, nil
}

// Update replaces the chemical document. Returns mongo.ErrNoDocuments when it does not exist.
func (r *ChemicalsRepository) Update(ctx context.Context, chemical *model.Chemical) error {
	chemical.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": chemical.ID}, chemical)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a chemical and reports whether it existed.
func (r *ChemicalsRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// RemoveRegulationLimits drops every limit registered under the regulation.
func (r *ChemicalsRepository) RemoveRegulationLimits(ctx context.Context, id model.RegulationID) (int64, error) {
	res, err := r.collection.UpdateMany(
		ctx,
		bson.M{"limits.regulation_id": id},
		bson.M{
			"$pull": bson.M{"limits": bson.M{"regulation_id": id}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Search returns chemicals matching the filter, sorted by name.
func (r *ChemicalsRepository) Search(ctx context.Context, filter model.ChemicalFilter) ([]model.Chemical, error) {
	findOptions := options.Find().SetSort(bson.M{"name": 1})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}
	if filter.Skip > 0 {
		findOptions.SetSkip(int64(filter.Skip))
	}

	cursor, err := r.collection.Find(ctx, chemicalQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	chemicals := []model.Chemical{}
	if err := cursor.All(ctx, &chemicals); err != nil {
		return nil, err
	}
	return chemicals, nil
}

// Count returns the number of chemicals matching the filter, ignoring Limit and Skip.
func (r *ChemicalsRepository) Count(ctx context.Context, filter model.ChemicalFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, chemicalQuery(filter))
}

func chemicalQuery(filter model.ChemicalFilter) bson.M {
	query := bson.M{}
	if filter.Query != "" {
		pattern := regexp.QuoteMeta(filter.Query)
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"cas_number": bson.M{"$regex": pattern}},
		}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.Categories) > 0 {
		query["categories"] = bson.M{"$in": filter.Categories}
	}
	if len(filter.RegulationIDs) > 0 {
		query["limits.regulation_id"] = bson.M{"$in": filter.RegulationIDs}
	}
	return query
}
