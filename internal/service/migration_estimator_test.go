package service

import (
	"errors"
	"math"
	"testing"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const euID model.RegulationID = "eu-10-2011"
const fdaID model.RegulationID = "fda-21-cfr-175-178"

func standardParams() model.PackagingParameters {
	return model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1, FoodWeight: 1000}
}

func TestMigrationValue(t *testing.T) {
	tests := []struct {
		name          string
		contamination float64
		params        model.PackagingParameters
		expected      float64
		wantErr       bool
	}{
		{
			name:          "standard scenario",
			contamination: 1,
			params:        standardParams(),
			expected:      0.06,
		},
		{
			name:          "arbitrary positive values",
			contamination: 12.5,
			params:        model.PackagingParameters{ContactSurfaceArea: 250, Thickness: 0.035, Density: 0.94, FoodWeight: 330},
			expected:      (12.5 * 250 * 0.035 * 0.94) / 330,
		},
		{
			name:          "zero contamination yields zero",
			contamination: 0,
			params:        standardParams(),
			expected:      0,
		},
		{
			name:          "zero thickness yields zero",
			contamination: 5,
			params:        model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0, Density: 1, FoodWeight: 1000},
			expected:      0,
		},
		{
			name:          "zero food weight",
			contamination: 1,
			params:        model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: 1, FoodWeight: 0},
			wantErr:       true,
		},
		{
			name:          "negative density",
			contamination: 1,
			params:        model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0.1, Density: -1, FoodWeight: 1000},
			wantErr:       true,
		},
		{
			name:          "negative contamination",
			contamination: -1,
			params:        standardParams(),
			wantErr:       true,
		},
		{
			name:          "overflow to infinity",
			contamination: math.MaxFloat64,
			params:        model.PackagingParameters{ContactSurfaceArea: 1e10, Thickness: 1, Density: 1, FoodWeight: 1},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MigrationValue(tt.contamination, tt.params)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidParameters))
				return
			}
			require.NoError(t, err)
			assert.InEpsilon(t, tt.expected+1, m+1, 1e-9)
			assert.False(t, math.IsNaN(m))
		})
	}
}

func TestMigrationValue_FormulaProperty(t *testing.T) {
	values := []float64{0.001, 0.1, 1, 3.7, 60, 1500}
	for _, q := range values {
		for _, a := range values {
			for _, f := range values {
				p := model.PackagingParameters{ContactSurfaceArea: a, Thickness: 0.2, Density: 1.3, FoodWeight: f}
				m, err := MigrationValue(q, p)
				require.NoError(t, err)
				assert.InEpsilon(t, (q*a*0.2*1.3)/f, m, 1e-9)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		m        float64
		limit    float64
		expected model.Verdict
	}{
		{"below limit passes", 0.06, 0.1, model.VerdictPass},
		{"above limit fails", 0.06, 0.05, model.VerdictFail},
		{"equal to limit fails", 0.06, 0.06, model.VerdictFail},
		{"zero limit fails zero value", 0, 0, model.VerdictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.m, tt.limit))
		})
	}
}

func TestMigrationEstimatorService_Estimate(t *testing.T) {
	estimator := NewMigrationEstimator()

	bpa := model.Substance{
		ID:              1,
		Name:            "Bisphenol A",
		CASNumber:       "80-05-7",
		Contamination:   1,
		FromDatabase:    true,
		ReferenceLimits: map[model.RegulationID]float64{euID: 0.05, fdaID: 0.1},
	}
	manual := model.Substance{ID: 2, Name: "Unlisted additive", Contamination: 1}
	empty := model.Substance{ID: 3}

	t.Run("classifies against every column", func(t *testing.T) {
		results, err := estimator.Estimate(standardParams(), []model.Substance{bpa, manual, empty}, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.InEpsilon(t, 0.06, results[0].MigrationValue, 1e-9)
		assert.Equal(t, model.VerdictFail, results[0].Verdict(euID))
		assert.Equal(t, model.VerdictPass, results[0].Verdict(fdaID))
		require.NotNil(t, results[0].Verdicts[0].Limit)
		assert.Equal(t, 0.05, *results[0].Verdicts[0].Limit)

		assert.Len(t, results[1].Verdicts, 2)
		assert.Equal(t, model.VerdictUnknown, results[1].Verdict(euID))
		assert.Nil(t, results[1].Verdicts[0].Limit)

		assert.Equal(t, 0.0, results[2].MigrationValue)
		assert.Equal(t, model.VerdictUnknown, results[2].Verdict(fdaID))
	})

	t.Run("preserves input order", func(t *testing.T) {
		input := []model.Substance{empty, bpa, manual}
		results, err := estimator.Estimate(standardParams(), input, nil)
		require.NoError(t, err)
		for i := range input {
			assert.Equal(t, input[i].ID, results[i].Substance.ID)
		}
	})

	t.Run("explicit columns keep their order and names", func(t *testing.T) {
		cols := []model.RegulationColumn{{ID: fdaID, Name: "FDA"}, {ID: "gb-9685-2016", Name: "GB"}}
		results, err := estimator.Estimate(standardParams(), []model.Substance{bpa}, cols)
		require.NoError(t, err)
		require.Len(t, results[0].Verdicts, 2)
		assert.Equal(t, fdaID, results[0].Verdicts[0].RegulationID)
		assert.Equal(t, "FDA", results[0].Verdicts[0].RegulationName)
		assert.Equal(t, model.VerdictUnknown, results[0].Verdicts[1].Verdict)
	})

	t.Run("zero food weight is rejected", func(t *testing.T) {
		p := standardParams()
		p.FoodWeight = 0
		results, err := estimator.Estimate(p, []model.Substance{bpa}, nil)
		assert.ErrorIs(t, err, ErrInvalidParameters)
		assert.Nil(t, results)
	})

	t.Run("empty substances", func(t *testing.T) {
		results, err := estimator.Estimate(standardParams(), nil, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRegulationColumns(t *testing.T) {
	subs := []model.Substance{
		{ReferenceLimits: map[model.RegulationID]float64{fdaID: 1}},
		{ReferenceLimits: map[model.RegulationID]float64{euID: 1, fdaID: 2}},
		{},
	}

	cols := RegulationColumns(subs)
	assert.Equal(t, []model.RegulationColumn{{ID: euID}, {ID: fdaID}}, cols)
	assert.Empty(t, RegulationColumns(nil))
}

func TestIsReady(t *testing.T) {
	named := model.Substance{Name: "Formaldehyde", Contamination: 2}

	tests := []struct {
		name       string
		params     model.PackagingParameters
		substances []model.Substance
		expected   bool
	}{
		{
			name:       "ready",
			params:     standardParams(),
			substances: []model.Substance{{}, named},
			expected:   true,
		},
		{
			name:       "zero thickness",
			params:     model.PackagingParameters{ContactSurfaceArea: 600, Thickness: 0, Density: 1, FoodWeight: 1000},
			substances: []model.Substance{named},
		},
		{
			name:       "negative area",
			params:     model.PackagingParameters{ContactSurfaceArea: -600, Thickness: 0.1, Density: 1, FoodWeight: 1000},
			substances: []model.Substance{named},
		},
		{
			name:       "blank name",
			params:     standardParams(),
			substances: []model.Substance{{Name: "   ", Contamination: 3}},
		},
		{
			name:       "zero contamination",
			params:     standardParams(),
			substances: []model.Substance{{Name: "Formaldehyde"}},
		},
		{
			name:   "no substances",
			params: standardParams(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsReady(tt.params, tt.substances))
		})
	}
}
