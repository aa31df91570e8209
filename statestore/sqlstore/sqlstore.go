// Package sqlstore is an asyncrpc.DatabaseClient backed by an embedded
// modernc.org/sqlite database, with schema setup driven by
// golang-migrate rather than the hand-maintained dbVersions table
// channeldb uses for its bolt buckets — a SQL schema gets the same
// "never ship a migration for free" discipline through a real
// migration library instead.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/creditmesh/corenet/asyncrpc"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is a sqlite-backed asyncrpc.DatabaseClient. The zero value is
// not usable; build one with Open.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at dsn and
// brings its schema up to date via golang-migrate.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// node_state is single-row-per-node; sqlite serializes writers
	// regardless, so there is no benefit to a larger pool.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
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
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT blob, format_version FROM node_state WHERE node_pk = ?`,
		nodeKey(nodePK),
	).Scan(&blob, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, asyncrpc.ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return blob, byte(version), nil
}

// ApplyBatch satisfies asyncrpc.DatabaseClient. The write is a single
// statement, which sqlite already commits atomically.
func (s *Store) ApplyBatch(ctx context.Context, nodePK [32]byte, newBlob []byte, version byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO node_state (node_pk, format_version, blob, updated_at)
		 VALUES (?, ?, ?, unixepoch())
		 ON CONFLICT(node_pk) DO UPDATE SET
		   format_version = excluded.format_version,
		   blob = excluded.blob,
		   updated_at = excluded.updated_at`,
		nodeKey(nodePK), version, newBlob,
	)
	return err
}

// Close satisfies asyncrpc.DatabaseClient.
func (s *Store) Close() error {
	return s.db.Close()
}
