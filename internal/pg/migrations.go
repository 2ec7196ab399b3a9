package pg

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/GlebRadaev/tokenwallet/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies every pending wallet schema migration through the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	applied, err := migrate(ctx, stdlib.OpenDBFromPool(pool), migrations.Migrations)
	if err != nil {
		return err
	}
	zap.L().Info("schema is up to date", zap.Int("applied", applied))
	return nil
}

// migrate runs the goose provider over fsys and closes db when done.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) (int, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("init migration provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			zap.L().Warn("failed to close migration db", zap.Error(err))
		}
	}()

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		zap.L().Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	return len(results), nil
}
