//go:build !integration

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/mocks"
	"github.com/guttosm/compliance-track/internal/service"
)

func TestHistoryService_List(t *testing.T) {
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	tests := []struct {
		name    string
		query   service.HistoryQuery
		match   func(model.LogQueryOptions) bool
		wantErr error
	}{
		{
			name:  "all scope keeps audit entries with default limit",
			query: service.HistoryQuery{},
			match: func(o model.LogQueryOptions) bool {
				return o.AuditOnly && o.ActionTypes == nil && o.Limit == service.DefaultHistoryLimit
			},
		},
		{
			name:  "admin scope lists write actions",
			query: service.HistoryQuery{Scope: model.ScopeAdmin, From: &from, To: &to, Limit: 5000},
			match: func(o model.LogQueryOptions) bool {
				return len(o.ActionTypes) == len(model.ScopeAdmin.Actions()) &&
					o.Limit == service.MaxHistoryLimit && o.StartTime == &from && o.EndTime == &to
			},
		},
		{
			name:  "single action",
			query: service.HistoryQuery{Scope: model.ScopeUser, Action: model.ActionCalculate},
			match: func(o model.LogQueryOptions) bool {
				return len(o.ActionTypes) == 1 && o.ActionTypes[0] == model.ActionCalculate
			},
		},
		{
			name:    "action outside scope",
			query:   service.HistoryQuery{Scope: model.ScopeUser, Action: model.ActionDeleteChemical},
			wantErr: service.ErrInvalidHistoryQuery,
		},
		{
			name:    "unknown scope",
			query:   service.HistoryQuery{Scope: "robots"},
			wantErr: service.ErrInvalidHistoryQuery,
		},
		{
			name:    "inverted range",
			query:   service.HistoryQuery{From: &to, To: &from},
			wantErr: service.ErrInvalidHistoryQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := new(mocks.MockActivityLog)
			if tt.match != nil {
				logs.On("Query", mock.Anything, mock.MatchedBy(tt.match)).
					Return([]model.LogEntry{{ActionType: model.ActionCalculate}}, nil)
				logs.On("Count", mock.Anything, mock.MatchedBy(tt.match)).Return(int64(1), nil)
			}

			page, err := service.NewHistoryService(logs).List(context.Background(), tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Entries, 1)
			assert.Equal(t, int64(1), page.Total)
			logs.AssertExpectations(t)
		})
	}
}

func TestHistoryService_Errors(t *testing.T) {
	_, err := service.NewHistoryService(nil).List(context.Background(), service.HistoryQuery{})
	assert.ErrorIs(t, err, service.ErrRepositoryNotConfigured)

	logs := new(mocks.MockActivityLog)
	logs.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	_, err = service.NewHistoryService(logs).List(context.Background(), service.HistoryQuery{})
	assert.Error(t, err)
}
