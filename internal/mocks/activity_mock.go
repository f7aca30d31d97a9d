// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service"
)

func entries(args mock.Arguments) []model.LogEntry {
	if v := args.Get(0); v != nil {
		return v.([]model.LogEntry)
	}
	return nil
}

type MockActivityLog struct{ mock.Mock }

func NewMockActivityLog(t cleanupT) *MockActivityLog {
	return expect(t, &MockActivityLog{})
}

func (m *MockActivityLog) Record(ctx context.Context, batch ...*model.LogEntry) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockActivityLog) Query(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error) {
	args := m.Called(ctx, q)
	return entries(args), args.Error(1)
}

func (m *MockActivityLog) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

type MockLogsRepository struct{ mock.Mock }

func NewMockLogsRepository(t cleanupT) *MockLogsRepository {
	return expect(t, &MockLogsRepository{})
}

func (m *MockLogsRepository) Append(ctx context.Context, batch ...*model.LogEntry) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockLogsRepository) Find(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error) {
	args := m.Called(ctx, q)
	return entries(args), args.Error(1)
}

func (m *MockLogsRepository) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ service.ActivityLog                = (*MockActivityLog)(nil)
	_ repository.LogsRepositoryInterface = (*MockLogsRepository)(nil)
)
