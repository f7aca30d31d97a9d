// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/service"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockChemicalService struct {
	mock.Mock
}

// NewMockChemicalService creates a mock that asserts its expectations on cleanup.
func NewMockChemicalService(t testingT) *MockChemicalService {
	m := &MockChemicalService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockChemicalService) Search(ctx context.Context, q service.ChemicalQuery) (*service.ChemicalPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChemicalPage), args.Error(1)
}

func (m *MockChemicalService) Get(ctx context.Context, id string) (*model.Chemical, error) {
	args := m.Called(ctx, id)
	return chemicalOrNil(args.Get(0)), args.Error(1)
}

func (m *MockChemicalService) ForRegulation(ctx context.Context, id model.RegulationID) ([]model.Chemical, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chemical), args.Error(1)
}

func (m *MockChemicalService) Create(ctx context.Context, chemical *model.Chemical, actor string) error {
	args := m.Called(ctx, chemical, actor)
	return args.Error(0)
}

func (m *MockChemicalService) Update(ctx context.Context, id string, patch service.ChemicalPatch, actor string) (*model.Chemical, error) {
	args := m.Called(ctx, id, patch, actor)
	return chemicalOrNil(args.Get(0)), args.Error(1)
}

func (m *MockChemicalService) Delete(ctx context.Context, id string) (*model.Chemical, error) {
	args := m.Called(ctx, id)
	return chemicalOrNil(args.Get(0)), args.Error(1)
}

func (m *MockChemicalService) SetLimit(ctx context.Context, id string, regulationID model.RegulationID, sml float64, actor string) (*model.Chemical, error) {
	args := m.Called(ctx, id, regulationID, sml, actor)
	return chemicalOrNil(args.Get(0)), args.Error(1)
}

func (m *MockChemicalService) RemoveLimit(ctx context.Context, id string, regulationID model.RegulationID, actor string) (*model.Chemical, error) {
	args := m.Called(ctx, id, regulationID, actor)
	return chemicalOrNil(args.Get(0)), args.Error(1)
}

func chemicalOrNil(v interface{}) *model.Chemical {
	if v == nil {
		return nil
	}
	return v.(*model.Chemical)
}

type MockRegulationService struct {
	mock.Mock
}

// NewMockRegulationService creates a mock that asserts its expectations on cleanup.
func NewMockRegulationService(t testingT) *MockRegulationService {
	m := &MockRegulationService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRegulationService) List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Regulation), args.Error(1)
}

func (m *MockRegulationService) ByCountry(ctx context.Context, filter model.RegulationFilter) ([]model.CountryRegulations, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CountryRegulations), args.Error(1)
}

func (m *MockRegulationService) Featured(ctx context.Context) ([]model.Regulation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Regulation), args.Error(1)
}

func (m *MockRegulationService) Get(ctx context.Context, id model.RegulationID) (*service.RegulationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegulationDetail), args.Error(1)
}

func (m *MockRegulationService) Columns(ctx context.Context, ids []model.RegulationID) ([]model.RegulationColumn, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegulationColumn), args.Error(1)
}

func (m *MockRegulationService) Create(ctx context.Context, regulation *model.Regulation) error {
	args := m.Called(ctx, regulation)
	return args.Error(0)
}

func (m *MockRegulationService) Update(ctx context.Context, id model.RegulationID, patch service.RegulationPatch) (*service.RegulationChange, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegulationChange), args.Error(1)
}

func (m *MockRegulationService) Delete(ctx context.Context, id model.RegulationID) (*model.Regulation, int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*model.Regulation), args.Get(1).(int64), args.Error(2)
}

func (m *MockRegulationService) SetFeatured(ctx context.Context, id model.RegulationID, featured bool) (*model.Regulation, error) {
	args := m.Called(ctx, id, featured)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Regulation), args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

// NewMockHistoryService creates a mock that asserts its expectations on cleanup.
func NewMockHistoryService(t testingT) *MockHistoryService {
	m := &MockHistoryService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHistoryService) List(ctx context.Context, q service.HistoryQuery) (*service.HistoryPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryPage), args.Error(1)
}

type MockSubstanceLookup struct {
	mock.Mock
}

// NewMockSubstanceLookup creates a mock that asserts its expectations on cleanup.
func NewMockSubstanceLookup(t testingT) *MockSubstanceLookup {
	m := &MockSubstanceLookup{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSubstanceLookup) Find(ctx context.Context, fragment string, limit int) ([]model.ReferenceSubstance, error) {
	args := m.Called(ctx, fragment, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReferenceSubstance), args.Error(1)
}

func (m *MockSubstanceLookup) Invalidate() {
	m.Called()
}
