// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

type MockRegulationsRepositoryInterface struct {
	mock.Mock
}

func (m *MockRegulationsRepositoryInterface) Create(ctx context.Context, regulation *model.Regulation) error {
	args := m.Called(ctx, regulation)
	return args.Error(0)
}

func (m *MockRegulationsRepositoryInterface) CreateMany(ctx context.Context, regulations []*model.Regulation) error {
	args := m.Called(ctx, regulations)
	return args.Error(0)
}

func (m *MockRegulationsRepositoryInterface) FindByID(ctx context.Context, id model.RegulationID) (*model.Regulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Regulation), args.Error(1)
}

func (m *MockRegulationsRepositoryInterface) FindByIDs(ctx context.Context, ids []model.RegulationID) ([]model.Regulation, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Regulation), args.Error(1)
}

func (m *MockRegulationsRepositoryInterface) Update(ctx context.Context, regulation *model.Regulation) error {
	args := m.Called(ctx, regulation)
	return args.Error(0)
}

func (m *MockRegulationsRepositoryInterface) Delete(ctx context.Context, id model.RegulationID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegulationsRepositoryInterface) List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Regulation), args.Error(1)
}
