// Package repository provides data access for regulations.
package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// RegulationsRepository provides methods for regulation operations.
type RegulationsRepository struct {
	collection *mongo.Collection
}

// NewRegulationsRepository creates a new regulations repository.
func NewRegulationsRepository(db *MongoDB) *RegulationsRepository {
	return &RegulationsRepository{
		collection: db.Regulations,
	}
}

// Create inserts a regulation. The id is chosen by the caller.
func (r *RegulationsRepository) Create(ctx context.Context, regulation *model.Regulation) error {
	now := time.Now().UTC()
	regulation.CreatedAt = now
	regulation.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, regulation)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// CreateMany inserts regulations in bulk, skipping ids that already exist.
func (r *RegulationsRepository) CreateMany(ctx context.Context, regulations []*model.Regulation) error {
	if len(regulations) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(regulations))
	for i, reg := range regulations {
		reg.CreatedAt = now
		reg.UpdatedAt = now
		docs[i] = reg
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// FindByID returns the regulation or nil when it does not exist.
func (r *RegulationsRepository) FindByID(ctx context.Context, id model.RegulationID) (*model.Regulation, error) {
	var regulation model.Regulation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&regulation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &regulation, nil
}

// FindByIDs returns the regulations with the given ids, sorted by id. Unknown ids are skipped.
func (r *RegulationsRepository) FindByIDs(ctx context.Context, ids []model.RegulationID) ([]model.Regulation, error) {
	if len(ids) == 0 {
		return []model.Regulation{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	regulations := []model.Regulation{}
	if err := cursor.All(ctx, &regulations); err != nil {
		return nil, err
	}
	return regulations, nil
}

// Update replaces the regulation document. Returns mongo.ErrNoDocuments when it does not exist.
func (r *RegulationsRepository) Update(ctx context.Context, regulation *model.Regulation) error {
	regulation.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": regulation.ID}, regulation)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a regulation and reports whether it existed.
func (r *RegulationsRepository) Delete(ctx context.Context, id model.RegulationID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// List returns regulations matching the filter, sorted by country then name.
func (r *RegulationsRepository) List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "country", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, regulationQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	regulations := []model.Regulation{}
	if err := cursor.All(ctx, &regulations); err != nil {
		return nil, err
	}
	return regulations, nil
}

func regulationQuery(filter model.RegulationFilter) bson.M {
	query := bson.M{}
	if filter.Country != "" {
		query["country"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.Country) + "$", "$options": "i"}
	}
	if filter.Query != "" {
		pattern := regexp.QuoteMeta(filter.Query)
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"country": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if len(filter.Categories) > 0 {
		query["categories"] = bson.M{"$in": filter.Categories}
	}
	if filter.UpdatedOnly {
		query["update_details"] = bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}
	return query
}
