package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/validator"
)

// ChemicalQuery is a catalog search. Country keeps chemicals limited under any regulation of that country.
type ChemicalQuery struct {
	model.ChemicalFilter
	Country string
}

// ChemicalPage is one page of catalog results.
type ChemicalPage struct {
	Items []model.Chemical `json:"items"`
	Total int64            `json:"total"`
}

// ChemicalPatch carries the chemical fields a caller wants to change.
type ChemicalPatch struct {
	Name       *string
	CASNumber  *string
	Status     *model.ChemicalStatus
	RiskLevel  *model.RiskLevel
	Categories []string
}

// ChemicalService manages the chemical catalog.
type ChemicalService interface {
	Search(ctx context.Context, q ChemicalQuery) (*ChemicalPage, error)
	Get(ctx context.Context, id string) (*model.Chemical, error)
	ForRegulation(ctx context.Context, id model.RegulationID) ([]model.Chemical, error)
	Create(ctx context.Context, chemical *model.Chemical, actor string) error
	Update(ctx context.Context, id string, patch ChemicalPatch, actor string) (*model.Chemical, error)
	Delete(ctx context.Context, id string) (*model.Chemical, error)
	SetLimit(ctx context.Context, id string, regulationID model.RegulationID, sml float64, actor string) (*model.Chemical, error)
	RemoveLimit(ctx context.Context, id string, regulationID model.RegulationID, actor string) (*model.Chemical, error)
}

// CatalogOption configures the catalog services.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	onChange []func()
}

// WithChangeHook registers fn to run after every successful catalog write.
func WithChangeHook(fn func()) CatalogOption {
	return func(o *catalogOptions) {
		if fn != nil {
			o.onChange = append(o.onChange, fn)
		}
	}
}

func (o *catalogOptions) changed() {
	for _, fn := range o.onChange {
		fn()
	}
}

// ChemicalServiceImpl implements ChemicalService.
type ChemicalServiceImpl struct {
	chemicals   repository.ChemicalsRepositoryInterface
	regulations repository.RegulationsRepositoryInterface
	opts        catalogOptions
}

// NewChemicalService creates a new chemical service.
func NewChemicalService(
	chemicals repository.ChemicalsRepositoryInterface,
	regulations repository.RegulationsRepositoryInterface,
	opts ...CatalogOption,
) *ChemicalServiceImpl {
	s := &ChemicalServiceImpl{chemicals: chemicals, regulations: regulations}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *ChemicalServiceImpl) Search(ctx context.Context, q ChemicalQuery) (*ChemicalPage, error) {
	if s.chemicals == nil {
		return nil, ErrRepositoryNotConfigured
	}

	filter := q.ChemicalFilter
	filter.Query = strings.TrimSpace(filter.Query)
	if q.Country != "" {
		regs, err := s.regulations.List(ctx, model.RegulationFilter{Country: q.Country})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve country regulations: %w", err)
		}
		if len(regs) == 0 {
			return &ChemicalPage{Items: []model.Chemical{}}, nil
		}
		for _, r := range regs {
			filter.RegulationIDs = append(filter.RegulationIDs, r.ID)
		}
	}

	items, err := s.chemicals.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.chemicals.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ChemicalPage{Items: items, Total: total}, nil
}

func (s *ChemicalServiceImpl) Get(ctx context.Context, id string) (*model.Chemical, error) {
	if s.chemicals == nil {
		return nil, ErrRepositoryNotConfigured
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrChemicalNotFound, id)
	}
	chemical, err := s.chemicals.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if chemical == nil {
		return nil, fmt.Errorf("%w: %s", ErrChemicalNotFound, id)
	}
	return chemical, nil
}

func (s *ChemicalServiceImpl) ForRegulation(ctx context.Context, id model.RegulationID) ([]model.Chemical, error) {
	if s.chemicals == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.chemicals.Search(ctx, model.ChemicalFilter{RegulationIDs: []model.RegulationID{id}})
}

func (s *ChemicalServiceImpl) Create(ctx context.Context, chemical *model.Chemical, actor string) error {
	if s.chemicals == nil {
		return ErrRepositoryNotConfigured
	}

	normalizeChemical(chemical)
	if err := validateChemical(chemical); err != nil {
		return err
	}
	if err := s.requireRegulations(ctx, chemical.Limits); err != nil {
		return err
	}

	chemical.CreatedBy = actor
	chemical.UpdatedBy = actor
	if err := s.chemicals.Create(ctx, chemical); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrChemicalExists, chemical.Name)
		}
		return err
	}
	s.opts.changed()
	return nil
}

func (s *ChemicalServiceImpl) Update(ctx context.Context, id string, patch ChemicalPatch, actor string) (*model.Chemical, error) {
	chemical, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		chemical.Name = *patch.Name
	}
	if patch.CASNumber != nil {
		chemical.CASNumber = *patch.CASNumber
	}
	if patch.Status != nil {
		chemical.Status = *patch.Status
	}
	if patch.RiskLevel != nil {
		chemical.RiskLevel = *patch.RiskLevel
	}
	if patch.Categories != nil {
		chemical.Categories = patch.Categories
	}
	normalizeChemical(chemical)
	if err := validateChemical(chemical); err != nil {
		return nil, err
	}

	return s.save(ctx, chemical, actor)
}

func (s *ChemicalServiceImpl) Delete(ctx context.Context, id string) (*model.Chemical, error) {
	chemical, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.chemicals.Delete(ctx, chemical.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("%w: %s", ErrChemicalNotFound, id)
	}
	s.opts.changed()
	return chemical, nil
}

func (s *ChemicalServiceImpl) SetLimit(ctx context.Context, id string, regulationID model.RegulationID, sml float64, actor string) (*model.Chemical, error) {
	if sml < 0 {
		return nil, fmt.Errorf("%w: sml must not be negative", ErrInvalidCatalogEntry)
	}
	chemical, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRegulations(ctx, []model.RegulationLimit{{RegulationID: regulationID}}); err != nil {
		return nil, err
	}

	chemical.SetLimit(regulationID, sml)
	return s.save(ctx, chemical, actor)
}

func (s *ChemicalServiceImpl) RemoveLimit(ctx context.Context, id string, regulationID model.RegulationID, actor string) (*model.Chemical, error) {
	chemical, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !chemical.RemoveLimit(regulationID) {
		return nil, fmt.Errorf("%w: %s", ErrLimitNotFound, regulationID)
	}
	return s.save(ctx, chemical, actor)
}

func (s *ChemicalServiceImpl) save(ctx context.Context, chemical *model.Chemical, actor string) (*model.Chemical, error) {
	chemical.UpdatedBy = actor
	if err := s.chemicals.Update(ctx, chemical); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: %s", ErrChemicalExists, chemical.Name)
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("%w: %s", ErrChemicalNotFound, chemical.ID.Hex())
		}
		return nil, err
	}
	s.opts.changed()
	return chemical, nil
}

// requireRegulations checks that every limit points at an existing regulation.
func (s *ChemicalServiceImpl) requireRegulations(ctx context.Context, limits []model.RegulationLimit) error {
	if len(limits) == 0 || s.regulations == nil {
		return nil
	}
	ids := make([]model.RegulationID, 0, len(limits))
	for _, l := range limits {
		if !slices.Contains(ids, l.RegulationID) {
			ids = append(ids, l.RegulationID)
		}
	}
	found, err := s.regulations.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(r model.Regulation) bool { return r.ID == id }) {
			return fmt.Errorf("%w: %s", ErrRegulationNotFound, id)
		}
	}
	return nil
}

func normalizeChemical(c *model.Chemical) {
	c.Name = strings.TrimSpace(c.Name)
	c.CASNumber = strings.TrimSpace(c.CASNumber)
	if c.Status == "" {
		c.Status = model.StatusUnknown
	}
	if c.RiskLevel == "" {
		c.RiskLevel = model.RiskUnknown
	}
}

func validateChemical(c *model.Chemical) error {
	switch {
	case c.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCatalogEntry)
	case c.CASNumber != "" && !validator.IsCASNumber(c.CASNumber):
		return fmt.Errorf("%w: malformed CAS number %q", ErrInvalidCatalogEntry, c.CASNumber)
	case !c.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCatalogEntry, c.Status)
	case !c.RiskLevel.Valid():
		return fmt.Errorf("%w: unknown risk level %q", ErrInvalidCatalogEntry, c.RiskLevel)
	}
	seen := make(map[model.RegulationID]bool, len(c.Limits))
	for _, l := range c.Limits {
		if l.SML < 0 {
			return fmt.Errorf("%w: sml for %s must not be negative", ErrInvalidCatalogEntry, l.RegulationID)
		}
		if seen[l.RegulationID] {
			return fmt.Errorf("%w: duplicate limit for %s", ErrInvalidCatalogEntry, l.RegulationID)
		}
		seen[l.RegulationID] = true
	}
	return nil
}
