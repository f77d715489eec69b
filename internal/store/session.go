// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/safescan/internal/session"
	"github.com/pdiddy/safescan/pkg/types"
)

// RecordAttempt applies one attempt to a session's counters inside a single
// transaction and returns the new counters. A missing session starts from
// zero counters.
func (s *Store) RecordAttempt(ctx context.Context, userID, sessionID string, isMRR bool) (types.SessionCounters, error) {
	if err := checkIDs(userID, sessionID); err != nil {
		return types.SessionCounters{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.SessionCounters{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	key := SessionKey(userID, sessionID)
	query := `SELECT body FROM documents WHERE path = ?`
	if s.driver == types.DriverPostgres {
		query += ` FOR UPDATE`
	}

	var cur types.SessionCounters
	if err := s.getQuery(ctx, tx, query, key, &cur); err != nil && !errors.Is(err, types.ErrNotFound) {
		return types.SessionCounters{}, fmt.Errorf("reading session %s: %w", sessionID, err)
	}

	next := session.UpdateSessionAttemptCounters(cur, isMRR)
	if err := s.put(ctx, tx, userID, CollectionSessions, key, next); err != nil {
		return types.SessionCounters{}, fmt.Errorf("writing session %s: %w", sessionID, err)
	}
	if err := tx.Commit(); err != nil {
		return types.SessionCounters{}, fmt.Errorf("committing session %s: %w", sessionID, err)
	}
	return next, nil
}
