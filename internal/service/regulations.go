package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/validator"
)

// RegulationDetail is a regulation with its description rendered as HTML.
type RegulationDetail struct {
	model.Regulation
	DescriptionHTML template.HTML `json:"description_html,omitempty" swaggertype:"string"`
}

// RegulationPatch carries the regulation fields a caller wants to change.
type RegulationPatch struct {
	Name          *string
	Country       *string
	Region        *string
	Description   *string
	Link          *string
	Categories    []string
	UpdateDetails *string
}

// RegulationChange is the outcome of an update: both versions and a text patch of the description.
type RegulationChange struct {
	Previous         model.Regulation `json:"previous"`
	Current          model.Regulation `json:"current"`
	DescriptionPatch string           `json:"description_patch,omitempty"`
}

// RegulationService manages the regulation catalog.
type RegulationService interface {
	List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error)
	ByCountry(ctx context.Context, filter model.RegulationFilter) ([]model.CountryRegulations, error)
	Featured(ctx context.Context) ([]model.Regulation, error)
	Get(ctx context.Context, id model.RegulationID) (*RegulationDetail, error)
	Columns(ctx context.Context, ids []model.RegulationID) ([]model.RegulationColumn, error)
	Create(ctx context.Context, regulation *model.Regulation) error
	Update(ctx context.Context, id model.RegulationID, patch RegulationPatch) (*RegulationChange, error)
	Delete(ctx context.Context, id model.RegulationID) (*model.Regulation, int64, error)
	SetFeatured(ctx context.Context, id model.RegulationID, featured bool) (*model.Regulation, error)
}

// RegulationServiceImpl implements RegulationService.
type RegulationServiceImpl struct {
	regulations repository.RegulationsRepositoryInterface
	chemicals   repository.ChemicalsRepositoryInterface
	opts        catalogOptions
}

// NewRegulationService creates a new regulation service.
func NewRegulationService(
	regulations repository.RegulationsRepositoryInterface,
	chemicals repository.ChemicalsRepositoryInterface,
	opts ...CatalogOption,
) *RegulationServiceImpl {
	s := &RegulationServiceImpl{regulations: regulations, chemicals: chemicals}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *RegulationServiceImpl) List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error) {
	if s.regulations == nil {
		return nil, ErrRepositoryNotConfigured
	}
	filter.Country = strings.TrimSpace(filter.Country)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.regulations.List(ctx, filter)
}

// ByCountry groups the regulations by country. Groups keep the repository order, which is sorted by country.
func (s *RegulationServiceImpl) ByCountry(ctx context.Context, filter model.RegulationFilter) ([]model.CountryRegulations, error) {
	regs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	groups := []model.CountryRegulations{}
	for _, r := range regs {
		if n := len(groups); n > 0 && groups[n-1].Country == r.Country {
			groups[n-1].Regulations = append(groups[n-1].Regulations, r)
			continue
		}
		groups = append(groups, model.CountryRegulations{Country: r.Country, Regulations: []model.Regulation{r}})
	}
	return groups, nil
}

func (s *RegulationServiceImpl) Featured(ctx context.Context) ([]model.Regulation, error) {
	featured := true
	return s.List(ctx, model.RegulationFilter{Featured: &featured})
}

func (s *RegulationServiceImpl) Get(ctx context.Context, id model.RegulationID) (*RegulationDetail, error) {
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RegulationDetail{Regulation: *reg, DescriptionHTML: RenderMarkdown(reg.Description)}, nil
}

// Columns resolves regulation ids into result columns, keeping the given order.
// Ids missing from the catalog keep an empty name.
func (s *RegulationServiceImpl) Columns(ctx context.Context, ids []model.RegulationID) ([]model.RegulationColumn, error) {
	columns := make([]model.RegulationColumn, len(ids))
	for i, id := range ids {
		columns[i].ID = id
	}
	if len(ids) == 0 || s.regulations == nil {
		return columns, nil
	}

	regs, err := s.regulations.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[model.RegulationID]string, len(regs))
	for _, r := range regs {
		names[r.ID] = r.Name
	}
	for i := range columns {
		columns[i].Name = names[columns[i].ID]
	}
	return columns, nil
}

func (s *RegulationServiceImpl) Create(ctx context.Context, regulation *model.Regulation) error {
	if s.regulations == nil {
		return ErrRepositoryNotConfigured
	}

	normalizeRegulation(regulation)
	if regulation.ID == "" {
		regulation.ID = RegulationSlug(regulation.Name)
	}
	if err := validateRegulation(regulation); err != nil {
		return err
	}

	if err := s.regulations.Create(ctx, regulation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrRegulationExists, regulation.ID)
		}
		return err
	}
	s.opts.changed()
	return nil
}

func (s *RegulationServiceImpl) Update(ctx context.Context, id model.RegulationID, patch RegulationPatch) (*RegulationChange, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *current
	previous.Categories = append([]string(nil), current.Categories...)

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Country != nil {
		current.Country = *patch.Country
	}
	if patch.Region != nil {
		current.Region = *patch.Region
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.Link != nil {
		current.Link = *patch.Link
	}
	if patch.Categories != nil {
		current.Categories = patch.Categories
	}
	if patch.UpdateDetails != nil && *patch.UpdateDetails != current.UpdateDetails {
		current.UpdateDetails = *patch.UpdateDetails
		now := time.Now().UTC()
		current.LastUpdated = &now
	}
	normalizeRegulation(current)
	if err := validateRegulation(current); err != nil {
		return nil, err
	}

	if err := s.save(ctx, current); err != nil {
		return nil, err
	}
	return &RegulationChange{
		Previous:         previous,
		Current:          *current,
		DescriptionPatch: DescriptionPatch(previous.Description, current.Description),
	}, nil
}

// Delete removes the regulation and strips its limits from every chemical.
// It returns the removed regulation and the number of chemicals that lost a limit.
func (s *RegulationServiceImpl) Delete(ctx context.Context, id model.RegulationID) (*model.Regulation, int64, error) {
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	deleted, err := s.regulations.Delete(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !deleted {
		return nil, 0, fmt.Errorf("%w: %s", ErrRegulationNotFound, id)
	}

	var stripped int64
	if s.chemicals != nil {
		stripped, err = s.chemicals.RemoveRegulationLimits(ctx, id)
		if err != nil {
			return nil, 0, fmt.Errorf("regulation deleted but limits were not removed: %w", err)
		}
	}
	s.opts.changed()
	return reg, stripped, nil
}

func (s *RegulationServiceImpl) SetFeatured(ctx context.Context, id model.RegulationID, featured bool) (*model.Regulation, error) {
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.Featured = featured
	if err := s.save(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *RegulationServiceImpl) find(ctx context.Context, id model.RegulationID) (*model.Regulation, error) {
	if s.regulations == nil {
		return nil, ErrRepositoryNotConfigured
	}
	reg, err := s.regulations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: %s", ErrRegulationNotFound, id)
	}
	return reg, nil
}

func (s *RegulationServiceImpl) save(ctx context.Context, reg *model.Regulation) error {
	if err := s.regulations.Update(ctx, reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", ErrRegulationNotFound, reg.ID)
		}
		return err
	}
	s.opts.changed()
	return nil
}

// RenderMarkdown converts a Markdown description to HTML. Unparseable input is escaped instead.
func RenderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// DescriptionPatch returns a diff-match-patch text patch from before to after, or "" when they match.
func DescriptionPatch(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return dmp.PatchToText(dmp.PatchMake(before, diffs))
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// RegulationSlug derives a regulation id from its name: "Regulation (EU) 10/2011" becomes "regulation-eu-10-2011".
func RegulationSlug(name string) model.RegulationID {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(name), "-")
	return model.RegulationID(strings.Trim(slug, "-"))
}

func normalizeRegulation(r *model.Regulation) {
	r.ID = model.RegulationID(strings.TrimSpace(string(r.ID)))
	r.Name = strings.TrimSpace(r.Name)
	r.Country = strings.TrimSpace(r.Country)
	r.Region = strings.TrimSpace(r.Region)
	r.Link = strings.TrimSpace(r.Link)
}

func validateRegulation(r *model.Regulation) error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCatalogEntry)
	case r.Country == "":
		return fmt.Errorf("%w: country is required", ErrInvalidCatalogEntry)
	case !validator.IsRegulationID(string(r.ID)):
		return fmt.Errorf("%w: malformed regulation id %q", ErrInvalidCatalogEntry, r.ID)
	}
	return nil
}
