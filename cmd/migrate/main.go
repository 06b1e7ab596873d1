package main

import (
	"context"
	"flag"

	"github.com/jhoicas/billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/logger"
)

func main() {
	action := flag.String("action", "up", "Acción de migración: up, down, version")
	verbose := flag.Bool("verbose", false, "Log en nivel debug")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	level := cfg.App.LogLevel
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level})
	log.Info().Str("action", *action).Msg("herramienta de migraciones")

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	migrator, err := postgres.NewMigrator(pool)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() { _ = migrator.Close() }()

	switch *action {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
	default:
		log.Fatal().Str("action", *action).Msg("acción desconocida; use up, down o version")
	}
	if err != nil {
		log.Fatal().Err(err).Str("action", *action).Msg("migración fallida")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones completadas")
}
