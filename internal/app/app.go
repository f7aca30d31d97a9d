// Package app wires configuration, storage and services into the HTTP router.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/http"
)

// InitializeApp creates and wires all application dependencies. The logger is expected
// to be installed already. The returned cleanup drains background workers and closes
// the database; call it after the server stopped.
func InitializeApp(cfg config.Config) (*gin.Engine, func()) {
	services := InitializeServices(cfg.Session)
	db := InitializeDatabase(cfg.Database)
	accounts := InitializeAccounts(db, cfg.Auth)
	router := InitializeRouter(services, db, accounts, cfg)

	cleanup := func() {
		// pending activity entries are written before the connection goes away
		router.Stop()
		accounts.Stop()
		services.Stop()
		db.Close()
	}

	return http.NewRouter(router.HealthHandler, router.Config), cleanup
}
