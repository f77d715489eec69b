// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scan sessions, user overrides, and admin alerts as
// JSON documents addressed by slash-separated keys:
//
//	{userId}/scanSessions/{sessionId}
//	{userId}/overrides/{userId}_{fingerprint}
//	{userId}/adminAlerts/{alertId}
//
// The default backend is SQLite; PostgreSQL is available through pgx.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/safescan/pkg/types"
)

// Collection names used in document keys.
const (
	CollectionSessions  = "scanSessions"
	CollectionOverrides = "overrides"
	CollectionAlerts    = "adminAlerts"
)

// Store reads and writes documents over database/sql.
type Store struct {
	db     *sql.DB
	driver types.StoreDriver
	now    func() time.Time
}

// Open connects using cfg and creates the schema if it does not exist.
func Open(ctx context.Context, cfg types.StoreConfig) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case types.DriverSQLite, "":
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err = sql.Open("sqlite3", cfg.DSN+"?_journal_mode=WAL&_busy_timeout=5000")
		if err == nil {
			// One connection serializes RecordAttempt transactions.
			db.SetMaxOpenConns(1)
		}
	case types.DriverPostgres:
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("store driver %q: %w", cfg.Driver, types.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := New(db, cfg.Driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// New wraps an open database. It does not touch the schema.
func New(db *sql.DB, driver types.StoreDriver) *Store {
	if driver == "" {
		driver = types.DriverSQLite
	}
	return &Store{db: db, driver: driver, now: time.Now}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the documents table and its index.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			collection TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(user_id, collection)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SessionKey returns the document key of a scan session.
func SessionKey(userID, sessionID string) string {
	return userID + "/" + CollectionSessions + "/" + sessionID
}

// OverrideKey returns the document key of a user override.
func OverrideKey(userID, fingerprint string) string {
	return userID + "/" + CollectionOverrides + "/" + userID + "_" + fingerprint
}

// AlertKey returns the document key of an admin alert.
func AlertKey(userID, alertID string) string {
	return userID + "/" + CollectionAlerts + "/" + alertID
}

// GetSession returns the counters of a session, or types.ErrNotFound.
func (s *Store) GetSession(ctx context.Context, userID, sessionID string) (types.SessionCounters, error) {
	if err := checkIDs(userID, sessionID); err != nil {
		return types.SessionCounters{}, err
	}
	var c types.SessionCounters
	if err := s.get(ctx, s.db, SessionKey(userID, sessionID), &c); err != nil {
		return types.SessionCounters{}, fmt.Errorf("getting session %s: %w", sessionID, err)
	}
	return c, nil
}

// GetOverride returns the stored correction for an item fingerprint, or
// types.ErrNotFound.
func (s *Store) GetOverride(ctx context.Context, userID, fingerprint string) (types.AnalysisResult, error) {
	if err := checkIDs(userID, fingerprint); err != nil {
		return types.AnalysisResult{}, err
	}
	var r types.AnalysisResult
	if err := s.get(ctx, s.db, OverrideKey(userID, fingerprint), &r); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("getting override %s: %w", fingerprint, err)
	}
	return r, nil
}

// PutOverride stores a correction, replacing any earlier one for the same
// fingerprint.
func (s *Store) PutOverride(ctx context.Context, userID, fingerprint string, r types.AnalysisResult) error {
	if err := checkIDs(userID, fingerprint); err != nil {
		return err
	}
	if err := s.put(ctx, s.db, userID, CollectionOverrides, OverrideKey(userID, fingerprint), r); err != nil {
		return fmt.Errorf("putting override %s: %w", fingerprint, err)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) get(ctx context.Context, q queryer, path string, v any) error {
	return s.getQuery(ctx, q, `SELECT body FROM documents WHERE path = ?`, path, v)
}

func (s *Store) getQuery(ctx context.Context, q queryer, query, path string, v any) error {
	var body string
	err := q.QueryRowContext(ctx, s.rebind(query), path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, q queryer, userID, collection, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	_, err = q.ExecContext(ctx, s.rebind(
		`INSERT INTO documents (path, user_id, collection, body, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			body=excluded.body, updated_at=excluded.updated_at`),
		path, userID, collection, string(body), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != types.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// checkIDs rejects blank identifiers and ones that would break key paths.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
			return fmt.Errorf("identifier %q: %w", id, types.ErrInvalidInput)
		}
	}
	return nil
}
