package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/p2pmarket/order-service/internal/config"
)

// PostgresStore keeps key-value entries in a single kv_entries table, for
// deployments that already run Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to connect to database: %w", err)
	}

	if cfg.MigrationsPath != "" {
		if err := applyMigrations(cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	log.Info().Msg("kv: connected to PostgreSQL")
	return &PostgresStore{pool: pool}, nil
}

func applyMigrations(cfg config.PostgresConfig) error {
	dsn := fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	m, err := migrate.New("file://"+cfg.MigrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("kv: failed to initialize migration instance: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("kv: no new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("kv: failed to apply migrations: %w", err)
	}
	log.Info().Msg("kv: migrations applied")
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv_entries WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv: failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Write(ctx context.Context, key, value string) error {
	const stmt = `
		INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := s.pool.Exec(ctx, stmt, key, value); err != nil {
		return fmt.Errorf("kv: failed to write %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const stmt = `DELETE FROM kv_entries WHERE key = $1`

	if _, err := s.pool.Exec(ctx, stmt, key); err != nil {
		return fmt.Errorf("kv: failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	log.Info().Msg("kv: database connection closed")
	return nil
}
