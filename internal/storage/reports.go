package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Report kinds stored by the engine.
const (
	KindMaster    = "master"    // per-tournament card report
	KindArchetype = "archetype" // per-archetype card report, name = slug
	KindCardIndex = "cardIndex" // per-tournament card index
	KindTrends    = "trends"    // archetype trend report, tournament id = ""
	KindCardTrend = "cardTrends"
	KindMatchups  = "matchups" // name = target archetype slug
)

// ErrNotFound is returned when no stored report matches the key.
var ErrNotFound = errors.New("report not found")

// StoredReport is one persisted report blob.
type StoredReport struct {
	TournamentID string
	Kind         string
	Name         string
	GeneratedAt  time.Time
	Payload      []byte
}

// SaveReport stores (or replaces) a report blob. The payload is any
// JSON-marshalable value.
func (db *DB) SaveReport(ctx context.Context, tournamentID, kind, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s report: %w", kind, err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO reports (tournament_id, kind, name, generated_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tournament_id, kind, name)
		DO UPDATE SET generated_at = excluded.generated_at, payload = excluded.payload`,
		tournamentID, kind, name, time.Now().UTC(), string(data))
	if err != nil {
		return fmt.Errorf("save %s report: %w", kind, err)
	}
	return nil
}

// GetReport loads a stored report blob.
func (db *DB) GetReport(ctx context.Context, tournamentID, kind, name string) (*StoredReport, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT tournament_id, kind, name, generated_at, payload
		FROM reports
		WHERE tournament_id = ? AND kind = ? AND name = ?`,
		tournamentID, kind, name)

	var r StoredReport
	var payload string
	if err := row.Scan(&r.TournamentID, &r.Kind, &r.Name, &r.GeneratedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %s report: %w", kind, err)
	}
	r.Payload = []byte(payload)
	return &r, nil
}

// LoadReport loads a stored report and unmarshals its payload into out.
func (db *DB) LoadReport(ctx context.Context, tournamentID, kind, name string, out any) error {
	r, err := db.GetReport(ctx, tournamentID, kind, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(r.Payload, out); err != nil {
		return fmt.Errorf("decode %s report: %w", kind, err)
	}
	return nil
}

// ListReports lists stored reports of one kind, newest first.
func (db *DB) ListReports(ctx context.Context, kind string) ([]StoredReport, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT tournament_id, kind, name, generated_at, payload
		FROM reports
		WHERE kind = ?
		ORDER BY generated_at DESC, tournament_id`, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s reports: %w", kind, err)
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var r StoredReport
		var payload string
		if err := rows.Scan(&r.TournamentID, &r.Kind, &r.Name, &r.GeneratedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.Payload = []byte(payload)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReports removes every stored report for a tournament, used when
// a tournament is re-downloaded and regenerated.
func (db *DB) DeleteReports(ctx context.Context, tournamentID string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM reports WHERE tournament_id = ?`, tournamentID); err != nil {
		return fmt.Errorf("delete reports for %s: %w", tournamentID, err)
	}
	return nil
}
