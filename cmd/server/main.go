package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hearthhq/hearth-api/internal/config"
	"github.com/hearthhq/hearth-api/internal/database"
	"github.com/hearthhq/hearth-api/internal/handler"
	"github.com/hearthhq/hearth-api/internal/repository"
	"github.com/hearthhq/hearth-api/internal/router"
	"github.com/hearthhq/hearth-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	cfg := config.Load() // fatal on missing secret outside local development

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	members := repository.NewMembershipRepo(db)
	sessions := repository.NewSessionRepo(db)
	integrations := repository.NewIntegrationRepo(db)

	authSvc := service.NewAuthService(&cfg, users, members, sessions)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, &cfg,
		handler.NewAuthHandler(authSvc),
		handler.NewIntegrationsHandler(integrations),
		members,
		config.NewRedisClient(), // nil disables throttling
		config.LoadRateLimitConfig(),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
