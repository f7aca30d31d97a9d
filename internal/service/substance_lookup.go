package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/metrics"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service/cache"
)

// Default lookup caps.
const (
	DefaultLookupLimit = 20
	MaxLookupLimit     = 100
)

// SubstanceLookup finds reference substances by name or CAS number fragment.
type SubstanceLookup interface {
	// Find returns at most limit matches. No match yields an empty slice, not an error.
	Find(ctx context.Context, fragment string, limit int) ([]model.ReferenceSubstance, error)
	// Invalidate drops cached lookups after the catalog changed.
	Invalidate()
}

// LookupConfig configures the lookup caps and result cache.
type LookupConfig struct {
	DefaultLimit int
	MaxLimit     int
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
}

// CatalogSubstanceLookup implements SubstanceLookup over the chemical catalog.
type CatalogSubstanceLookup struct {
	chemicals    repository.ChemicalsRepositoryInterface
	cache        *cache.Store[[]model.ReferenceSubstance]
	defaultLimit int
	maxLimit     int
}

// NewSubstanceLookup creates a lookup. A disabled cache queries the repository on every call.
func NewSubstanceLookup(chemicals repository.ChemicalsRepositoryInterface, cfg LookupConfig) *CatalogSubstanceLookup {
	l := &CatalogSubstanceLookup{
		chemicals:    chemicals,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
	if l.defaultLimit <= 0 {
		l.defaultLimit = DefaultLookupLimit
	}
	if l.maxLimit <= 0 {
		l.maxLimit = MaxLookupLimit
	}
	if l.defaultLimit > l.maxLimit {
		l.defaultLimit = l.maxLimit
	}
	if cfg.CacheEnabled && cfg.CacheSize > 0 {
		l.cache = cache.New[[]model.ReferenceSubstance](cache.Options{
			Name:     "substance_lookup",
			Capacity: cfg.CacheSize,
			TTL:      cfg.CacheTTL,
		})
	}
	return l
}

// Find implements SubstanceLookup.
func (l *CatalogSubstanceLookup) Find(ctx context.Context, fragment string, limit int) ([]model.ReferenceSubstance, error) {
	if l.chemicals == nil {
		metrics.RecordSubstanceLookup("error")
		return nil, ErrRepositoryNotConfigured
	}

	fragment = strings.TrimSpace(fragment)
	limit = l.clamp(limit)

	key := strconv.Itoa(limit) + ":" + strings.ToLower(fragment)
	if l.cache != nil {
		if refs, ok := l.cache.Get(key); ok {
			metrics.RecordSubstanceLookup("cached")
			return refs, nil
		}
	}

	chemicals, err := l.chemicals.Search(ctx, model.ChemicalFilter{Query: fragment, Limit: limit})
	if err != nil {
		metrics.RecordSubstanceLookup("error")
		return nil, err
	}

	refs := make([]model.ReferenceSubstance, 0, len(chemicals))
	for i := range chemicals {
		refs = append(refs, chemicals[i].ReferenceSubstance())
	}
	if len(refs) == 0 {
		metrics.RecordSubstanceLookup("empty")
	} else {
		metrics.RecordSubstanceLookup("found")
	}

	if l.cache != nil {
		l.cache.Set(key, refs)
	}
	return refs, nil
}

// Invalidate implements SubstanceLookup.
func (l *CatalogSubstanceLookup) Invalidate() {
	if l.cache != nil {
		l.cache.Clear()
	}
}

// Stop ends the cache sweeper.
func (l *CatalogSubstanceLookup) Stop() {
	if l.cache != nil {
		l.cache.Stop()
	}
}

func (l *CatalogSubstanceLookup) clamp(limit int) int {
	if limit <= 0 {
		return l.defaultLimit
	}
	if limit > l.maxLimit {
		return l.maxLimit
	}
	return limit
}
