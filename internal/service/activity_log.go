package service

import (
	"context"
	"strings"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
)

const maxUserAgent = 256

// secretFields are masked in audit fields before they are stored.
var secretFields = []string{"password", "token", "secret", "authorization", "api_key"}

// ActivityLog appends to and reads the request and audit history.
type ActivityLog interface {
	Record(ctx context.Context, entries ...*model.LogEntry) error
	Query(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error)
	Count(ctx context.Context, q model.LogQueryOptions) (int64, error)
}

// ActivityLogStore is the ActivityLog backed by the logs collection.
type ActivityLogStore struct {
	repo repository.LogsRepositoryInterface
}

// NewActivityLog creates the store.
func NewActivityLog(repo repository.LogsRepositoryInterface) *ActivityLogStore {
	return &ActivityLogStore{repo: repo}
}

// Record masks secrets and stores the entries in one write.
func (s *ActivityLogStore) Record(ctx context.Context, entries ...*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		scrub(e)
	}
	return s.repo.Append(ctx, entries...)
}

func (s *ActivityLogStore) Query(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error) {
	return s.repo.Find(ctx, q)
}

func (s *ActivityLogStore) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	return s.repo.Count(ctx, q)
}

func scrub(e *model.LogEntry) {
	if len(e.UserAgent) > maxUserAgent {
		e.UserAgent = e.UserAgent[:maxUserAgent]
	}
	for key := range e.Fields {
		lower := strings.ToLower(key)
		for _, secret := range secretFields {
			if strings.Contains(lower, secret) {
				e.Fields[key] = "[redacted]"
				break
			}
		}
	}
}
