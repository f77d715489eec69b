// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pdiddy/safescan/pkg/types"
)

// PutAlert stores an admin alert under its ID.
func (s *Store) PutAlert(ctx context.Context, userID string, a types.AdminAlert) error {
	if err := checkIDs(userID, a.ID); err != nil {
		return err
	}
	if err := s.put(ctx, s.db, userID, CollectionAlerts, AlertKey(userID, a.ID), a); err != nil {
		return fmt.Errorf("putting alert %s: %w", a.ID, err)
	}
	return nil
}

// ListAlerts returns a user's alerts, newest first. With unreadOnly, alerts
// already marked read are skipped.
func (s *Store) ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]types.AdminAlert, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT body FROM documents WHERE user_id = ? AND collection = ? ORDER BY path`),
		userID, CollectionAlerts,
	)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []types.AdminAlert{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		var a types.AdminAlert
		if err := json.Unmarshal([]byte(body), &a); err != nil {
			return nil, fmt.Errorf("decoding alert: %w", err)
		}
		if unreadOnly && a.IsRead {
			continue
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}

	slices.SortStableFunc(alerts, func(a, b types.AdminAlert) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return alerts, nil
}

// MarkAlertRead sets IsRead on one alert. It returns types.ErrNotFound when
// the alert does not exist.
func (s *Store) MarkAlertRead(ctx context.Context, userID, alertID string) error {
	if err := checkIDs(userID, alertID); err != nil {
		return err
	}
	var a types.AdminAlert
	if err := s.get(ctx, s.db, AlertKey(userID, alertID), &a); err != nil {
		return fmt.Errorf("getting alert %s: %w", alertID, err)
	}
	a.IsRead = true
	return s.PutAlert(ctx, userID, a)
}
