// Package pgstore is an asyncrpc.DatabaseClient backed by PostgreSQL:
// pgxpool serves the runtime LoadState/ApplyBatch traffic, while schema
// setup goes through golang-migrate's postgres driver over a plain
// database/sql connection (lib/pq), the same split most pgx-based
// services use since golang-migrate predates pgx's native driver
// support.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/lib/pq"

	"github.com/creditmesh/corenet/asyncrpc"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is a PostgreSQL-backed asyncrpc.DatabaseClient. The zero value
// is not usable; build one with Open.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at dsn, brings its schema up to date
// via golang-migrate, and returns a Store serving it through a pgx
// connection pool.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func nodeKey(nodePK [32]byte) string {
	return hex.EncodeToString(nodePK[:])
}

// LoadState satisfies asyncrpc.DatabaseClient.
func (s *Store) LoadState(ctx context.Context, nodePK [32]byte) ([]byte, byte, error) {
	var blob []byte
	var version int16
	err := s.pool.QueryRow(ctx,
		`SELECT blob, format_version FROM node_state WHERE node_pk = $1`,
		nodeKey(nodePK),
	).Scan(&blob, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, asyncrpc.ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return blob, byte(version), nil
}

// ApplyBatch satisfies asyncrpc.DatabaseClient. The upsert is a single
// statement, which postgres already commits atomically.
func (s *Store) ApplyBatch(ctx context.Context, nodePK [32]byte, newBlob []byte, version byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO node_state (node_pk, format_version, blob, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (node_pk) DO UPDATE SET
		   format_version = excluded.format_version,
		   blob = excluded.blob,
		   updated_at = excluded.updated_at`,
		nodeKey(nodePK), int16(version), newBlob,
	)
	return err
}

// Close satisfies asyncrpc.DatabaseClient.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
