package service

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// Workflow steps of a calculation session.
const (
	StepSelectCase = 1
	StepEnterData  = 2
	StepResults    = 3
)

// ParametersPatch carries the packaging fields a caller wants to change. Nil fields are left as they are.
type ParametersPatch struct {
	ContactSurfaceArea *float64
	Thickness          *float64
	Density            *float64
	FoodWeight         *float64
}

// SubstancePatch carries the substance fields a caller wants to change. Nil fields are left as they are.
type SubstancePatch struct {
	Name          *string
	CASNumber     *string
	Contamination *float64
}

// SessionSnapshot is a read-only copy of a session's state.
type SessionSnapshot struct {
	ID         string                    `json:"id"`
	Owner      string                    `json:"owner,omitempty"`
	Step       int                       `json:"step"`
	Case       model.CalculationCase     `json:"case"`
	Parameters model.PackagingParameters `json:"parameters"`
	Substances []model.Substance         `json:"substances"`
	Columns    []model.RegulationColumn  `json:"columns,omitempty"`
	Ready      bool                      `json:"ready"`
	Calculated bool                      `json:"calculated"`
	Results    []model.CalculationResult `json:"results,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// CalculationSession holds the workflow state of one user's calculation: the selected case,
// the packaging parameters and an ordered list of substances whose ids come from a
// monotonic counter. Methods are safe for concurrent use.
type CalculationSession struct {
	mu         sync.Mutex
	id         string
	owner      string
	step       int
	calcCase   model.CalculationCase
	params     model.PackagingParameters
	substances []model.Substance
	nextID     model.SubstanceID
	columns    []model.RegulationColumn
	results    []model.CalculationResult
	calculated bool
	estimator  MigrationEstimator
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCalculationSession starts a session with the default parameters and one empty substance.
func NewCalculationSession(id string, estimator MigrationEstimator) *CalculationSession {
	if estimator == nil {
		estimator = NewMigrationEstimator()
	}
	ts := time.Now().UTC()
	s := &CalculationSession{
		id:        id,
		step:      StepSelectCase,
		calcCase:  model.CaseKnownContactAndWeight,
		params:    model.DefaultPackagingParameters(),
		estimator: estimator,
		createdAt: ts,
		updatedAt: ts,
	}
	s.substances = []model.Substance{s.newSubstance()}
	return s
}

// ID returns the session identifier.
func (s *CalculationSession) ID() string {
	return s.id
}

// SetOwner binds the session to the user that created it. An empty owner leaves it open to any caller.
func (s *CalculationSession) SetOwner(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = userID
}

// OwnedBy reports whether userID may use the session. Unowned sessions accept every caller.
func (s *CalculationSession) OwnedBy(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner == "" || s.owner == userID
}

// newSubstance allocates the next arena id. Callers hold s.mu or own s exclusively.
func (s *CalculationSession) newSubstance() model.Substance {
	s.nextID++
	return model.Substance{ID: s.nextID, Contamination: model.DefaultContamination}
}

func (s *CalculationSession) touch() {
	s.updatedAt = time.Now().UTC()
}

// SetCase selects the calculation case. Selecting the unknown case forces the standard
// contact area and food weight; switching back keeps whatever values are current.
func (s *CalculationSession) SetCase(c model.CalculationCase) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCase, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calcCase = c
	s.params = s.params.ApplyCase(c)
	s.step = StepEnterData
	s.touch()
	return nil
}

// SetParameters applies a patch to the packaging parameters. Changing a field locked by the
// current case returns ErrParameterLocked; sending its current value is accepted.
func (s *CalculationSession) SetParameters(patch ParametersPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calcCase.LocksGeometry() {
		if patch.ContactSurfaceArea != nil && *patch.ContactSurfaceArea != s.params.ContactSurfaceArea {
			return fmt.Errorf("%w: contact_surface_area", ErrParameterLocked)
		}
		if patch.FoodWeight != nil && *patch.FoodWeight != s.params.FoodWeight {
			return fmt.Errorf("%w: food_weight", ErrParameterLocked)
		}
	}

	next := s.params
	if patch.ContactSurfaceArea != nil {
		next.ContactSurfaceArea = *patch.ContactSurfaceArea
	}
	if patch.Thickness != nil {
		next.Thickness = *patch.Thickness
	}
	if patch.Density != nil {
		next.Density = *patch.Density
	}
	if patch.FoodWeight != nil {
		next.FoodWeight = *patch.FoodWeight
	}
	for name, v := range map[string]float64{
		"contact_surface_area": next.ContactSurfaceArea,
		"thickness":            next.Thickness,
		"density":              next.Density,
		"food_weight":          next.FoodWeight,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidParameters, name)
		}
	}

	s.params = next
	s.touch()
	return nil
}

// SetColumns fixes the regulation columns results are classified against.
// An empty list derives the columns from the substances at calculation time.
func (s *CalculationSession) SetColumns(columns []model.RegulationColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.columns = slices.Clone(columns)
	s.touch()
}

// AddSubstance appends an empty substance and returns it.
func (s *CalculationSession) AddSubstance() model.Substance {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.newSubstance()
	s.substances = append(s.substances, sub)
	s.touch()
	return sub
}

func (s *CalculationSession) indexOf(id model.SubstanceID) int {
	for i := range s.substances {
		if s.substances[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateSubstance edits a substance in place. Manual edits keep any reference limits.
func (s *CalculationSession) UpdateSubstance(id model.SubstanceID, patch SubstancePatch) (model.Substance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Substance{}, fmt.Errorf("%w: %d", ErrSubstanceNotFound, id)
	}
	if patch.Contamination != nil && *patch.Contamination < 0 {
		return model.Substance{}, fmt.Errorf("%w: contamination must not be negative", ErrInvalidParameters)
	}

	sub := &s.substances[i]
	if patch.Name != nil {
		sub.Name = *patch.Name
	}
	if patch.CASNumber != nil {
		sub.CASNumber = *patch.CASNumber
	}
	if patch.Contamination != nil {
		sub.Contamination = *patch.Contamination
	}
	s.touch()
	return sub.Clone(), nil
}

// RemoveSubstance deletes a substance. Removing the last one leaves a single fresh empty entry.
func (s *CalculationSession) RemoveSubstance(id model.SubstanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrSubstanceNotFound, id)
	}
	if len(s.substances) == 1 {
		s.substances = []model.Substance{s.newSubstance()}
	} else {
		s.substances = slices.Delete(s.substances, i, i+1)
	}
	s.touch()
	return nil
}

// SelectReference replaces the substance's name, CAS number and reference limits with those of
// the reference match. Contamination is kept and earlier limits are discarded, never merged.
func (s *CalculationSession) SelectReference(id model.SubstanceID, ref model.ReferenceSubstance) (model.Substance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Substance{}, fmt.Errorf("%w: %d", ErrSubstanceNotFound, id)
	}

	sub := &s.substances[i]
	sub.Name = ref.Name
	sub.CASNumber = ref.CASNumber
	sub.FromDatabase = true
	sub.ReferenceLimits = make(map[model.RegulationID]float64, len(ref.Limits))
	maps.Copy(sub.ReferenceLimits, ref.Limits)
	s.touch()
	return sub.Clone(), nil
}

// Ready reports whether the session passes the readiness gate.
func (s *CalculationSession) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IsReady(s.params, s.substances)
}

// Calculate runs the estimator over the session's substances and stores the results.
func (s *CalculationSession) Calculate() ([]model.CalculationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !IsReady(s.params, s.substances) {
		return nil, ErrNotReady
	}

	results, err := s.estimator.Estimate(s.params, cloneSubstances(s.substances), s.columns)
	if err != nil {
		return nil, err
	}

	s.results = results
	s.calculated = true
	s.step = StepResults
	s.touch()
	return cloneResults(results), nil
}

// Results returns the results of the last calculation.
func (s *CalculationSession) Results() ([]model.CalculationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.calculated {
		return nil, ErrNotCalculated
	}
	return cloneResults(s.results), nil
}

// Columns returns the columns used by the last calculation, or the configured ones.
func (s *CalculationSession) Columns() []model.RegulationColumn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.columns) > 0 {
		return slices.Clone(s.columns)
	}
	if s.calculated && len(s.results) > 0 {
		cols := make([]model.RegulationColumn, 0, len(s.results[0].Verdicts))
		for _, v := range s.results[0].Verdicts {
			cols = append(cols, model.RegulationColumn{ID: v.RegulationID, Name: v.RegulationName})
		}
		return cols
	}
	return RegulationColumns(s.substances)
}

// Snapshot returns a copy of the session state.
func (s *CalculationSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSnapshot{
		ID:         s.id,
		Owner:      s.owner,
		Step:       s.step,
		Case:       s.calcCase,
		Parameters: s.params,
		Substances: cloneSubstances(s.substances),
		Columns:    slices.Clone(s.columns),
		Ready:      IsReady(s.params, s.substances),
		Calculated: s.calculated,
		Results:    cloneResults(s.results),
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
}

func cloneSubstances(subs []model.Substance) []model.Substance {
	out := make([]model.Substance, len(subs))
	for i := range subs {
		out[i] = subs[i].Clone()
	}
	return out
}

// cloneResults deep-copies results so callers can label or reorder them without touching session state.
func cloneResults(results []model.CalculationResult) []model.CalculationResult {
	if results == nil {
		return nil
	}
	out := make([]model.CalculationResult, len(results))
	for i := range results {
		out[i] = results[i].Clone()
	}
	return out
}
