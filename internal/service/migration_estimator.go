package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/metrics"
)

// MigrationEstimator computes worst-case migration values and classifies them against regulation limits.
type MigrationEstimator interface {
	// Estimate returns one result per substance, in input order. Verdicts are produced for every
	// column; when columns is empty they are derived from the substances' reference limits.
	Estimate(params model.PackagingParameters, substances []model.Substance, columns []model.RegulationColumn) ([]model.CalculationResult, error)
}

// MigrationEstimatorService implements MigrationEstimator with M = (Q × A × Lp × D) / F.
type MigrationEstimatorService struct{}

// NewMigrationEstimator creates a new MigrationEstimatorService.
func NewMigrationEstimator() *MigrationEstimatorService {
	return &MigrationEstimatorService{}
}

// Estimate implements MigrationEstimator.
func (s *MigrationEstimatorService) Estimate(
	params model.PackagingParameters,
	substances []model.Substance,
	columns []model.RegulationColumn,
) ([]model.CalculationResult, error) {
	start := time.Now()
	results, err := s.estimate(params, substances, columns)
	if err != nil {
		metrics.RecordMigrationCalculation(time.Since(start), "invalid", nil, nil)
		return nil, err
	}

	values := make([]float64, 0, len(results))
	verdicts := make([]string, 0, len(results))
	for _, r := range results {
		values = append(values, r.MigrationValue)
		for _, v := range r.Verdicts {
			verdicts = append(verdicts, string(v.Verdict))
		}
	}
	metrics.RecordMigrationCalculation(time.Since(start), "success", values, verdicts)
	return results, nil
}

func (s *MigrationEstimatorService) estimate(
	params model.PackagingParameters,
	substances []model.Substance,
	columns []model.RegulationColumn,
) ([]model.CalculationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = RegulationColumns(substances)
	}

	results := make([]model.CalculationResult, 0, len(substances))
	for _, sub := range substances {
		m, err := MigrationValue(sub.Contamination, params)
		if err != nil {
			return nil, fmt.Errorf("substance %d: %w", sub.ID, err)
		}

		verdicts := make([]model.RegulationVerdict, 0, len(columns))
		for _, col := range columns {
			rv := model.RegulationVerdict{
				RegulationID:   col.ID,
				RegulationName: col.Name,
				Verdict:        model.VerdictUnknown,
			}
			if limit, ok := sub.Limit(col.ID); ok {
				l := limit
				rv.Limit = &l
				rv.Verdict = Classify(m, limit)
			}
			verdicts = append(verdicts, rv)
		}

		results = append(results, model.CalculationResult{
			Substance:      sub,
			MigrationValue: m,
			Verdicts:       verdicts,
		})
	}
	return results, nil
}

// MigrationValue evaluates M = (Q × A × Lp × D) / F for a single contamination value.
func MigrationValue(contamination float64, params model.PackagingParameters) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if contamination < 0 || math.IsNaN(contamination) {
		return 0, fmt.Errorf("%w: contamination must not be negative", ErrInvalidParameters)
	}

	m := (contamination * params.ContactSurfaceArea * params.Thickness * params.Density) / params.FoodWeight
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, fmt.Errorf("%w: migration value is not finite", ErrInvalidParameters)
	}
	return m, nil
}

// Classify compares a migration value with a limit. A value equal to the limit fails.
func Classify(migrationValue, limit float64) model.Verdict {
	if migrationValue < limit {
		return model.VerdictPass
	}
	return model.VerdictFail
}

// RegulationColumns returns the union of regulation ids carried by the substances, sorted by id.
func RegulationColumns(substances []model.Substance) []model.RegulationColumn {
	seen := make(map[model.RegulationID]struct{})
	for _, sub := range substances {
		for id := range sub.ReferenceLimits {
			seen[id] = struct{}{}
		}
	}

	columns := make([]model.RegulationColumn, 0, len(seen))
	for id := range seen {
		columns = append(columns, model.RegulationColumn{ID: id})
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].ID < columns[j].ID })
	return columns
}

// IsReady reports whether a calculation has enough information to run: every packaging parameter
// is strictly positive and at least one substance has a name and a contamination above zero.
func IsReady(params model.PackagingParameters, substances []model.Substance) bool {
	if !params.AllPositive() {
		return false
	}
	for _, sub := range substances {
		if strings.TrimSpace(sub.Name) != "" && sub.Contamination > 0 {
			return true
		}
	}
	return false
}
