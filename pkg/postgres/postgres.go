package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

type Config struct {
	URL      string `envconfig:"DATABASE_URL"`
	MaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"20"`
	MinConns int32  `envconfig:"DATABASE_MIN_CONNS" default:"2"`
	Migrate  bool   `envconfig:"DATABASE_MIGRATE" default:"true"`
}

// New opens and pings a connection pool.
func (c *Config) New(ctx context.Context) (*pgxpool.Pool, error) {
	if c.URL == "" {
		return nil, errors.New("database url is empty")
	}
	config, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if c.MaxConns > 0 {
		config.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		config.MinConns = c.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations applies every pending up-migration found in migrationsFS.
func RunMigrations(databaseURL string, migrationsFS fs.FS) error {
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logx.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}
