// Package main is the entry point for the compliance-track application.
//
// @title           Compliance Track API
// @version         1.0.0
// @description     API for assessing the specific migration of substances from food contact materials.
//
//	The service estimates M = (Q x A x Lp x D) / F per substance and compares it with the
//	specific migration limits of the selected regulations.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/compliance-track
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for authentication. Required if authentication is enabled.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 JWT access token, formatted as "Bearer {token}".
//
// @tag.name        Calculations
// @tag.description Stateless migration calculations
//
// @tag.name        Sessions
// @tag.description Guided calculation sessions
//
// @tag.name        Catalog
// @tag.description Chemical and regulation reference data
//
// @tag.name        Admin
// @tag.description Catalog maintenance and activity history
//
// @tag.name        Auth
// @tag.description Authentication and authorization endpoints
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/guttosm/compliance-track/docs" // swagger docs

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	app.InitializeLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Auth.Enabled && cfg.Auth.UsesDevSecrets() {
		log.Warn().Msg("token secrets are the development defaults, set JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY")
	}

	router, cleanup := app.InitializeApp(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.NewServer(router, cfg.Server).Run(ctx)
	stop()
	cleanup()
	if err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
