// migrate aplica los scripts SQL pendientes de la carpeta de migraciones.
//
// Uso: go run ./cmd/migrate [ruta/migrations]
// Por defecto usa MIGRATIONS_DIR o ./migrations.
package main

import (
	"context"
	"os"
	"time"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/postgres"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/config"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	dir := "migrations"
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		dir = v
	}
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	n, err := postgres.Migrate(ctx, pool, dir)
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int("aplicadas", n).Str("dir", dir).Msg("migraciones al día")
}
