package app

import (
	"context"
	"time"

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/circuitbreaker"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds the MongoDB backed repositories. Catalog and log access goes
// through one circuit breaker per collection.
type DatabaseComponents struct {
	DB              *repository.MongoDB
	ChemicalsRepo   repository.ChemicalsRepositoryInterface
	RegulationsRepo repository.RegulationsRepositoryInterface
	ActivityLog     service.ActivityLog
	Breakers        map[string]*circuitbreaker.CircuitBreaker

	Users       repository.UsersRepositoryInterface
	Roles       repository.RolesRepositoryInterface
	Permissions repository.PermissionsRepositoryInterface
	Tokens      repository.TokensRepositoryInterface
}

// InitializeDatabase connects to MongoDB. It returns nil when the database is disabled
// or unreachable; the service then runs without catalog, history and accounts.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	mongoCfg := repository.DefaultMongoConfig()
	if cfg.Timeout > 0 {
		mongoCfg.ConnectTimeout = cfg.Timeout
	}
	db, err := repository.NewMongoDBWithConfig(cfg.URI, cfg.DatabaseName, mongoCfg)
	if err != nil {
		log.Error().Err(err).Msg("mongodb unreachable, catalog and history disabled")
		return nil
	}
	log.Info().Str("database", cfg.DatabaseName).Msg("connected to mongodb")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.SetLogsTTL(ctx, int(cfg.LogsTTL.Hours()/24)); err != nil {
		log.Warn().Err(err).Dur("ttl", cfg.LogsTTL).Msg("logs ttl index not applied")
	}

	breakers := map[string]*circuitbreaker.CircuitBreaker{
		"mongodb_chemicals":   newCircuitBreaker(cfg, "mongodb-chemicals"),
		"mongodb_regulations": newCircuitBreaker(cfg, "mongodb-regulations"),
		"mongodb_logs":        newCircuitBreaker(cfg, "mongodb-logs"),
	}

	components := &DatabaseComponents{
		DB:              db,
		ChemicalsRepo:   repository.NewChemicalsRepositoryWithCircuitBreaker(repository.NewChemicalsRepository(db), breakers["mongodb_chemicals"]),
		RegulationsRepo: repository.NewRegulationsRepositoryWithCircuitBreaker(repository.NewRegulationsRepository(db), breakers["mongodb_regulations"]),
		ActivityLog: service.NewActivityLog(
			repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), breakers["mongodb_logs"]),
		),
		Breakers:    breakers,
		Users:       repository.NewUsersRepository(db),
		Roles:       repository.NewRolesRepository(db),
		Permissions: repository.NewPermissionsRepository(db),
		Tokens:      repository.NewTokensRepository(db),
	}

	if cfg.SeedReferenceData {
		if err := service.SeedReferenceData(ctx, components.ChemicalsRepo, components.RegulationsRepo); err != nil {
			log.Warn().Err(err).Msg("reference data not seeded")
		}
	}
	return components
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close() {
	if d == nil || d.DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.DB.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("mongodb close failed")
	}
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
	})
}
