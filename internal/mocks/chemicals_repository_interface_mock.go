// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

type MockChemicalsRepositoryInterface struct {
	mock.Mock
}

func (m *MockChemicalsRepositoryInterface) Create(ctx context.Context, chemical *model.Chemical) error {
	args := m.Called(ctx, chemical)
	return args.Error(0)
}

func (m *MockChemicalsRepositoryInterface) CreateMany(ctx context.Context, chemicals []*model.Chemical) error {
	args := m.Called(ctx, chemicals)
	return args.Error(0)
}

func (m *MockChemicalsRepositoryInterface) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Chemical, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Chemical), args.Error(1)
}

func (m *MockChemicalsRepositoryInterface) Update(ctx context.Context, chemical *model.Chemical) error {
	args := m.Called(ctx, chemical)
	return args.Error(0)
}

func (m *MockChemicalsRepositoryInterface) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockChemicalsRepositoryInterface) RemoveRegulationLimits(ctx context.Context, id model.RegulationID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChemicalsRepositoryInterface) Search(ctx context.Context, filter model.ChemicalFilter) ([]model.Chemical, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chemical), args.Error(1)
}

func (m *MockChemicalsRepositoryInterface) Count(ctx context.Context, filter model.ChemicalFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
