package main

import (
	"context"
	"log"
	"time"

	"studyhighway/backend/internal/config"
	"studyhighway/backend/internal/db"
	"studyhighway/backend/internal/handler"
	"studyhighway/backend/internal/repository"
	"studyhighway/backend/internal/router"
	"studyhighway/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	subjectRepo := repository.NewSubjectRepository(database)
	simuladoRepo := repository.NewSimuladoRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	sessionService := service.NewSessionService(goalRepo)
	goalService := service.NewGoalService(goalRepo, sessionService)
	subjectService := service.NewSubjectService(subjectRepo)
	simuladoService := service.NewSimuladoService(simuladoRepo)

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	goalHandler := handler.NewGoalHandler(goalService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	simuladoHandler := handler.NewSimuladoHandler(simuladoService)

	// The ticker lives here, outside the session engine: the engine only
	// implements the effect of a tick.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runTicker(ctx, sessionService, cfg.TickInterval)

	engine := router.New(
		authService,
		authHandler,
		sessionHandler,
		goalHandler,
		subjectHandler,
		simuladoHandler,
		cfg.CORSOrigins,
	)
	log.Printf("backend listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func runTicker(ctx context.Context, sessions *service.SessionService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.TickAll(ctx, interval.Seconds())
		}
	}
}
