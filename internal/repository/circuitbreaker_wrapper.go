package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/domain/model"
)

// IsStoreFailure reports whether err means the store is unhealthy. Missing documents and
// unique-index rejections are answers, not failures.
func IsStoreFailure(err error) bool {
	switch {
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// ChemicalsRepositoryWithCircuitBreaker wraps a chemicals repository with circuit breaker protection.
type ChemicalsRepositoryWithCircuitBreaker struct {
	repo           ChemicalsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewChemicalsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewChemicalsRepositoryWithCircuitBreaker(repo ChemicalsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *ChemicalsRepositoryWithCircuitBreaker {
	return &ChemicalsRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

func (r *ChemicalsRepositoryWithCircuitBreaker) Create(ctx context.Context, chemical *model.Chemical) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, chemical)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, chemicals []*model.Chemical) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, chemicals)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Chemical, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (*model.Chemical, error) {
		return r.repo.FindByID(ctx, id)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) Update(ctx context.Context, chemical *model.Chemical) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Update(ctx, chemical)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (bool, error) {
		return r.repo.Delete(ctx, id)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) RemoveRegulationLimits(ctx context.Context, id model.RegulationID) (int64, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (int64, error) {
		return r.repo.RemoveRegulationLimits(ctx, id)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) Search(ctx context.Context, filter model.ChemicalFilter) ([]model.Chemical, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() ([]model.Chemical, error) {
		return r.repo.Search(ctx, filter)
	})
}

func (r *ChemicalsRepositoryWithCircuitBreaker) Count(ctx context.Context, filter model.ChemicalFilter) (int64, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (int64, error) {
		return r.repo.Count(ctx, filter)
	})
}

// RegulationsRepositoryWithCircuitBreaker wraps a regulations repository with circuit breaker protection.
type RegulationsRepositoryWithCircuitBreaker struct {
	repo           RegulationsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewRegulationsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewRegulationsRepositoryWithCircuitBreaker(repo RegulationsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *RegulationsRepositoryWithCircuitBreaker {
	return &RegulationsRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

func (r *RegulationsRepositoryWithCircuitBreaker) Create(ctx context.Context, regulation *model.Regulation) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, regulation)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, regulations []*model.Regulation) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, regulations)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) FindByID(ctx context.Context, id model.RegulationID) (*model.Regulation, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (*model.Regulation, error) {
		return r.repo.FindByID(ctx, id)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) FindByIDs(ctx context.Context, ids []model.RegulationID) ([]model.Regulation, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() ([]model.Regulation, error) {
		return r.repo.FindByIDs(ctx, ids)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) Update(ctx context.Context, regulation *model.Regulation) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Update(ctx, regulation)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) Delete(ctx context.Context, id model.RegulationID) (bool, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (bool, error) {
		return r.repo.Delete(ctx, id)
	})
}

func (r *RegulationsRepositoryWithCircuitBreaker) List(ctx context.Context, filter model.RegulationFilter) ([]model.Regulation, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() ([]model.Regulation, error) {
		return r.repo.List(ctx, filter)
	})
}

// LogsRepositoryWithCircuitBreaker guards the activity history. Writes are best effort:
// while the circuit is open they are dropped instead of failing the caller.
type LogsRepositoryWithCircuitBreaker struct {
	repo           LogsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker wraps repo with cb.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

func (r *LogsRepositoryWithCircuitBreaker) Append(ctx context.Context, entries ...*model.LogEntry) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Append(ctx, entries...)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

func (r *LogsRepositoryWithCircuitBreaker) Find(ctx context.Context, q model.LogQueryOptions) ([]model.LogEntry, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() ([]model.LogEntry, error) {
		return r.repo.Find(ctx, q)
	})
}

func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	return circuitbreaker.Call(ctx, r.circuitBreaker, func() (int64, error) {
		return r.repo.Count(ctx, q)
	})
}
