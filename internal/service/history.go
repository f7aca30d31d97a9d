package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 1000
)

// HistoryQuery narrows the activity history.
type HistoryQuery struct {
	From   *time.Time
	To     *time.Time
	Scope  model.ActivityScope
	Action string
	UserID string
	Limit  int
	Skip   int
}

// HistoryPage is one page of activity entries, newest first.
type HistoryPage struct {
	Entries []model.LogEntry `json:"entries"`
	Total   int64            `json:"total"`
}

// HistoryService reads the activity recorded by the audit middleware.
type HistoryService interface {
	List(ctx context.Context, q HistoryQuery) (*HistoryPage, error)
}

// HistoryServiceImpl implements HistoryService over the activity log.
type HistoryServiceImpl struct {
	logs ActivityLog
}

// NewHistoryService creates a new history service.
func NewHistoryService(logs ActivityLog) *HistoryServiceImpl {
	return &HistoryServiceImpl{logs: logs}
}

// List returns activity entries matching the query.
func (s *HistoryServiceImpl) List(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	if s.logs == nil {
		return nil, ErrRepositoryNotConfigured
	}
	opts, err := q.options()
	if err != nil {
		return nil, err
	}

	entries, err := s.logs.Query(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := s.logs.Count(ctx, opts)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return &HistoryPage{Entries: entries, Total: total}, nil
}

func (q HistoryQuery) options() (model.LogQueryOptions, error) {
	if !q.Scope.Valid() {
		return model.LogQueryOptions{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidHistoryQuery, q.Scope)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return model.LogQueryOptions{}, fmt.Errorf("%w: to is before from", ErrInvalidHistoryQuery)
	}

	opts := model.LogQueryOptions{
		UserID:    q.UserID,
		StartTime: q.From,
		EndTime:   q.To,
		Limit:     q.Limit,
		Skip:      q.Skip,
		AuditOnly: true,
	}
	switch {
	case opts.Limit <= 0:
		opts.Limit = DefaultHistoryLimit
	case opts.Limit > MaxHistoryLimit:
		opts.Limit = MaxHistoryLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	scoped := q.Scope.Actions()
	switch {
	case q.Action != "" && scoped != nil && !slices.Contains(scoped, q.Action):
		return model.LogQueryOptions{}, fmt.Errorf("%w: action %q is outside scope %q", ErrInvalidHistoryQuery, q.Action, q.Scope)
	case q.Action != "":
		opts.ActionTypes = []string{q.Action}
	default:
		opts.ActionTypes = scoped
	}
	return opts, nil
}
