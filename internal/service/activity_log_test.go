//go:build !integration

package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/mocks"
	"github.com/guttosm/compliance-track/internal/service"
)

func TestActivityLog_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("masks secrets and caps the user agent", func(t *testing.T) {
		repo := mocks.NewMockLogsRepository(t)
		var stored []*model.LogEntry
		repo.On("Append", ctx, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).([]*model.LogEntry)
		}).Return(nil)

		entry := &model.LogEntry{
			ActionType: model.ActionLogin,
			UserAgent:  strings.Repeat("a", 400),
			Fields:     map[string]any{"email": "ana@lab.test", "Password": "hunter22", "refresh_token": "x"},
		}
		require.NoError(t, service.NewActivityLog(repo).Record(ctx, entry, &model.LogEntry{Message: "request"}))

		require.Len(t, stored, 2)
		assert.Len(t, stored[0].UserAgent, 256)
		assert.Equal(t, "ana@lab.test", stored[0].Fields["email"])
		assert.Equal(t, "[redacted]", stored[0].Fields["Password"])
		assert.Equal(t, "[redacted]", stored[0].Fields["refresh_token"])
	})

	t.Run("empty batch skips the store", func(t *testing.T) {
		repo := mocks.NewMockLogsRepository(t)
		assert.NoError(t, service.NewActivityLog(repo).Record(ctx))
	})

	t.Run("store error is returned", func(t *testing.T) {
		repo := mocks.NewMockLogsRepository(t)
		repo.On("Append", ctx, mock.Anything).Return(errors.New("write concern"))
		assert.Error(t, service.NewActivityLog(repo).Record(ctx, &model.LogEntry{}))
	})
}

func TestActivityLog_QueryAndCount(t *testing.T) {
	ctx := context.Background()
	q := model.LogQueryOptions{UserID: "u1", AuditOnly: true}

	repo := mocks.NewMockLogsRepository(t)
	repo.On("Find", ctx, q).Return([]model.LogEntry{{ActionType: model.ActionExport}}, nil)
	repo.On("Count", ctx, q).Return(int64(7), nil)

	log := service.NewActivityLog(repo)
	got, err := log.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, model.ActionExport, got[0].ActionType)

	n, err := log.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
