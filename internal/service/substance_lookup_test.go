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

func TestSubstanceLookup_Find(t *testing.T) {
	tests := []struct {
		name      string
		fragment  string
		limit     int
		wantLimit int
		found     []model.Chemical
		wantLen   int
	}{
		{
			name:      "default limit",
			fragment:  "bis",
			wantLimit: 20,
			found:     []model.Chemical{*bisphenolA()},
			wantLen:   1,
		},
		{
			name:      "limit is capped",
			fragment:  "",
			limit:     5000,
			wantLimit: 100,
			found:     []model.Chemical{},
		},
		{
			name:      "explicit limit",
			fragment:  "80-05",
			limit:     3,
			wantLimit: 3,
			found:     []model.Chemical{*bisphenolA()},
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockChemicalsRepositoryInterface)
			repo.On("Search", mock.Anything, model.ChemicalFilter{Query: tt.fragment, Limit: tt.wantLimit}).Return(tt.found, nil)

			lookup := service.NewSubstanceLookup(repo, service.LookupConfig{})
			refs, err := lookup.Find(context.Background(), tt.fragment, tt.limit)
			require.NoError(t, err)
			assert.NotNil(t, refs)
			assert.Len(t, refs, tt.wantLen)
			repo.AssertExpectations(t)
		})
	}
}

func TestSubstanceLookup_ReferenceRow(t *testing.T) {
	chem := bisphenolA()
	repo := new(mocks.MockChemicalsRepositoryInterface)
	repo.On("Search", mock.Anything, mock.Anything).Return([]model.Chemical{*chem}, nil)

	refs, err := service.NewSubstanceLookup(repo, service.LookupConfig{}).Find(context.Background(), "Bisphenol", 0)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, chem.ID.Hex(), refs[0].ChemicalID)
	assert.Equal(t, "80-05-7", refs[0].CASNumber)
	assert.Equal(t, map[model.RegulationID]float64{"eu-10-2011": 0.05}, refs[0].Limits)
}

func TestSubstanceLookup_Cache(t *testing.T) {
	repo := new(mocks.MockChemicalsRepositoryInterface)
	repo.On("Search", mock.Anything, mock.Anything).Return([]model.Chemical{*bisphenolA()}, nil)

	lookup := service.NewSubstanceLookup(repo, service.LookupConfig{CacheEnabled: true, CacheSize: 64, CacheTTL: time.Minute})
	defer lookup.Stop()
	ctx := context.Background()

	_, err := lookup.Find(ctx, "Bis", 0)
	require.NoError(t, err)
	_, err = lookup.Find(ctx, "bis", 0)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Search", 1)

	lookup.Invalidate()
	_, err = lookup.Find(ctx, "bis", 0)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Search", 2)
}

func TestSubstanceLookup_Errors(t *testing.T) {
	_, err := service.NewSubstanceLookup(nil, service.LookupConfig{}).Find(context.Background(), "x", 0)
	assert.ErrorIs(t, err, service.ErrRepositoryNotConfigured)

	repo := new(mocks.MockChemicalsRepositoryInterface)
	repo.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	_, err = service.NewSubstanceLookup(repo, service.LookupConfig{}).Find(context.Background(), "x", 0)
	assert.Error(t, err)
}
