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

// LogsRepository stores request and audit entries in the logs collection, which expires
// documents through the TTL index managed by MongoDB.SetLogsTTL.
type LogsRepository struct {
	coll *mongo.Collection
}

// NewLogsRepository binds the repository to db.Logs.
func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{coll: db.Logs}
}

// Append inserts the entries in one round trip. Entries are stamped first.
func (r *LogsRepository) Append(ctx context.Context, entries ...*model.LogEntry) error {
	switch len(entries) {
	case 0:
		return nil
	case 1:
		entries[0].Stamp(time.Now())
		_, err := r.coll.InsertOne(ctx, entries[0])
		return err
	}
	now := time.Now()
	docs := make([]any, len(entries))
	for i, e := range entries {
		e.Stamp(now)
		docs[i] = e
	}
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Find returns matching entries, newest first.
func (r *LogsRepository) Find(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}

	cur, err := r.coll.Find(ctx, logsFilter(q), opts)
	if err != nil {
		return nil, err
	}
	entries := []model.LogEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of matching entries.
func (r *LogsRepository) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	return r.coll.CountDocuments(ctx, logsFilter(q))
}

func logsFilter(q model.LogQueryOptions) bson.M {
	filter := bson.M{}
	for field, value := range map[string]string{
		"request_id": q.RequestID,
		"level":      q.Level,
		"method":     q.Method,
		"user_id":    q.UserID,
	} {
		if value != "" {
			filter[field] = value
		}
	}
	if q.Path != "" {
		filter["path"] = bson.M{"$regex": regexp.QuoteMeta(q.Path), "$options": "i"}
	}

	if len(q.ActionTypes) > 0 {
		filter["action_type"] = bson.M{"$in": q.ActionTypes}
	} else if q.AuditOnly {
		filter["action_type"] = bson.M{"$exists": true, "$ne": ""}
	}

	window := bson.M{}
	if q.StartTime != nil {
		window["$gte"] = *q.StartTime
	}
	if q.EndTime != nil {
		window["$lte"] = *q.EndTime
	}
	if len(window) > 0 {
		filter["timestamp"] = window
	}
	return filter
}
