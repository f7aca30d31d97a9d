// Package model defines the core domain entities for the compliance tracking service.
package model

import (
	"errors"
	"fmt"
	"maps"
)

// Standard packaging geometry used when the contact area and food weight are unknown.
const (
	DefaultContactSurfaceArea = 600.0
	DefaultFoodWeight         = 1000.0
	DefaultThickness          = 0.1
	DefaultDensity            = 1.0
	DefaultContamination      = 1.0
)

// ErrInvalidParameters is returned when packaging parameters cannot produce a finite migration value.
var ErrInvalidParameters = errors.New("invalid packaging parameters")

// CalculationCase selects how the contact surface area and food weight are obtained.
type CalculationCase string

const (
	// CaseKnownContactAndWeight lets the caller supply every packaging parameter.
	CaseKnownContactAndWeight CalculationCase = "known_contact_and_weight"
	// CaseUnknownContactAndWeight forces A = 600 cm² and F = 1000 g and locks both fields.
	CaseUnknownContactAndWeight CalculationCase = "unknown_contact_and_weight"
)

// Valid reports whether c is one of the known calculation cases.
func (c CalculationCase) Valid() bool {
	return c == CaseKnownContactAndWeight || c == CaseUnknownContactAndWeight
}

// LocksGeometry reports whether the contact surface area and food weight are read-only.
func (c CalculationCase) LocksGeometry() bool {
	return c == CaseUnknownContactAndWeight
}

// PackagingParameters holds the physical packaging values used by the migration formula.
//
// @Description Packaging parameters: A (cm²), Lp (cm), D (g/cm³), F (g)
type PackagingParameters struct {
	// ContactSurfaceArea (A) in cm²
	ContactSurfaceArea float64 `json:"contact_surface_area" bson:"contact_surface_area" example:"600"`
	// Thickness (Lp) in cm
	Thickness float64 `json:"thickness" bson:"thickness" example:"0.1"`
	// Density (D) in g/cm³
	Density float64 `json:"density" bson:"density" example:"1"`
	// FoodWeight (F) in g
	FoodWeight float64 `json:"food_weight" bson:"food_weight" example:"1000"`
}

// DefaultPackagingParameters returns the values a new calculation starts with.
func DefaultPackagingParameters() PackagingParameters {
	return PackagingParameters{
		ContactSurfaceArea: DefaultContactSurfaceArea,
		Thickness:          DefaultThickness,
		Density:            DefaultDensity,
		FoodWeight:         DefaultFoodWeight,
	}
}

// Validate returns ErrInvalidParameters when any value is negative or the food weight is zero.
func (p PackagingParameters) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"contact_surface_area", p.ContactSurfaceArea},
		{"thickness", p.Thickness},
		{"density", p.Density},
		{"food_weight", p.FoodWeight},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidParameters, f.name)
		}
	}
	if p.FoodWeight == 0 {
		return fmt.Errorf("%w: food_weight must be greater than zero", ErrInvalidParameters)
	}
	return nil
}

// AllPositive reports whether every parameter is strictly greater than zero.
func (p PackagingParameters) AllPositive() bool {
	return p.ContactSurfaceArea > 0 && p.Thickness > 0 && p.Density > 0 && p.FoodWeight > 0
}

// ApplyCase forces the standard geometry when c locks it. Values are left untouched otherwise.
func (p PackagingParameters) ApplyCase(c CalculationCase) PackagingParameters {
	if c.LocksGeometry() {
		p.ContactSurfaceArea = DefaultContactSurfaceArea
		p.FoodWeight = DefaultFoodWeight
	}
	return p
}

// RegulationID identifies a regulation in the catalog.
type RegulationID string

// SubstanceID is allocated by a calculation session from a monotonic counter.
type SubstanceID uint64

// Substance is one candidate chemical entry within a calculation session.
type Substance struct {
	ID            SubstanceID `json:"id" example:"1"`
	Name          string      `json:"name" example:"Bisphenol A"`
	CASNumber     string      `json:"cas_number,omitempty" example:"80-05-7"`
	Contamination float64     `json:"contamination" example:"1"`
	FromDatabase  bool        `json:"from_database"`
	// ReferenceLimits maps regulation id to SML (mg/kg). Nil for manually entered substances.
	ReferenceLimits map[RegulationID]float64 `json:"reference_limits,omitempty"`
}

// Limit returns the reference limit for the regulation, if one is known.
func (s Substance) Limit(id RegulationID) (float64, bool) {
	if s.ReferenceLimits == nil {
		return 0, false
	}
	v, ok := s.ReferenceLimits[id]
	return v, ok
}

// Clone returns a copy of s that shares no map with it.
func (s Substance) Clone() Substance {
	if s.ReferenceLimits != nil {
		s.ReferenceLimits = maps.Clone(s.ReferenceLimits)
	}
	return s
}

// Verdict is the compliance outcome of a migration value against one regulation.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictUnknown Verdict = "unknown"
)

// RegulationVerdict is the classification of one result against one regulation column.
type RegulationVerdict struct {
	RegulationID   RegulationID `json:"regulation_id" example:"eu-10-2011"`
	RegulationName string       `json:"regulation_name,omitempty" example:"Regulation (EU) 10/2011"`
	Limit          *float64     `json:"limit,omitempty" example:"0.05"`
	Verdict        Verdict      `json:"verdict" example:"fail"`
}

// CalculationResult is the estimated migration of one substance.
//
// @Description Worst-case migration value and compliance verdicts for one substance
type CalculationResult struct {
	Substance      Substance           `json:"substance"`
	MigrationValue float64             `json:"migration_value" example:"0.06"`
	Verdicts       []RegulationVerdict `json:"verdicts"`
}

// Clone returns a deep copy of r. Verdicts, their limits and the substance's
// reference limits are not shared with r.
func (r CalculationResult) Clone() CalculationResult {
	r.Substance = r.Substance.Clone()
	if r.Verdicts != nil {
		verdicts := make([]RegulationVerdict, len(r.Verdicts))
		for i, v := range r.Verdicts {
			if v.Limit != nil {
				limit := *v.Limit
				v.Limit = &limit
			}
			verdicts[i] = v
		}
		r.Verdicts = verdicts
	}
	return r
}

// Verdict returns the verdict recorded for the regulation, or VerdictUnknown.
func (r CalculationResult) Verdict(id RegulationID) Verdict {
	for _, v := range r.Verdicts {
		if v.RegulationID == id {
			return v.Verdict
		}
	}
	return VerdictUnknown
}

// RegulationColumn names a regulation that results are classified against.
type RegulationColumn struct {
	ID   RegulationID `json:"id" example:"eu-10-2011"`
	Name string       `json:"name,omitempty" example:"Regulation (EU) 10/2011"`
}
