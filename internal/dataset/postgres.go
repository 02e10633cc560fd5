package dataset

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool behind a PostgresStore.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore keeps the dataset in a Postgres table keyed by year,
// for deployments where several machines want to read the trend data.
// Schema:
//
//	CREATE TABLE year_counts (
//		year INT PRIMARY KEY,
//		count BIGINT NOT NULL CHECK (count >= 0),
//		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	pool  pgPool
	table string
}

// NewPostgresStore connects a pgx pool using cfg.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dataset.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "year_counts"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// NewPostgresStoreWithPool builds a store from an existing pool, primarily
// for tests.
func NewPostgresStoreWithPool(pool pgPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "year_counts"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Load reads all rows ordered by year. An empty table is an empty dataset.
func (s *PostgresStore) Load(ctx context.Context) (Dataset, error) {
	query := fmt.Sprintf(`SELECT year, count FROM %s ORDER BY year ASC`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var out Dataset
	for rows.Next() {
		var row YearCount
		if err := rows.Scan(&row.Year, &row.Count); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", s.table, err)
	}
	if out == nil {
		out = Dataset{}
	}
	return out, nil
}

// Save upserts every row by year. Rows absent from d are left in place,
// matching the never-delete lifecycle of the flat file.
func (s *PostgresStore) Save(ctx context.Context, d Dataset) error {
	query := fmt.Sprintf(`
INSERT INTO %s (year, count, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (year) DO UPDATE SET count = EXCLUDED.count, updated_at = NOW()`, s.table)
	for _, row := range d {
		if _, err := s.pool.Exec(ctx, query, row.Year, row.Count); err != nil {
			return fmt.Errorf("upsert year %d: %w", row.Year, err)
		}
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
