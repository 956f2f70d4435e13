package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/solicitudes-service/internal/auth"
	"github.com/spec-kit/solicitudes-service/internal/config"
	"github.com/spec-kit/solicitudes-service/internal/domain"
	"github.com/spec-kit/solicitudes-service/internal/observability"
	"github.com/spec-kit/solicitudes-service/internal/persistence"
)

// Seeds the two bootstrap accounts. Re-running is a no-op thanks to
// ON CONFLICT DO NOTHING.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	seeds := []struct {
		username string
		role     domain.Role
		password string
	}{
		{"usuario1", domain.RoleUser, envOr("SEED_USER_PASSWORD", "usuario1")},
		{"admin", domain.RoleAdmin, envOr("SEED_ADMIN_PASSWORD", "admin")},
	}

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	for _, seed := range seeds {
		hash, err := auth.HashPassword(seed.password, cfg.Auth.BcryptCost)
		if err != nil {
			logger.Fatal("failed to hash password", zap.String("usuario", seed.username), zap.Error(err))
		}
		const query = `
            INSERT INTO usuarios (usuario, rol, password)
            VALUES ($1, $2, $3)
            ON CONFLICT (usuario) DO NOTHING`
		cmd, err := pool.Exec(ctx, query, seed.username, seed.role, hash)
		if err != nil {
			logger.Fatal("failed to seed usuario", zap.String("usuario", seed.username), zap.Error(err))
		}
		if cmd.RowsAffected() == 0 {
			logger.Info("usuario already present", zap.String("usuario", seed.username))
		} else {
			logger.Info("usuario seeded", zap.String("usuario", seed.username), zap.String("rol", string(seed.role)))
		}
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
