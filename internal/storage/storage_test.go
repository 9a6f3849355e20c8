package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	cfg := DefaultConfig(":memory:")
	// An in-memory SQLite database exists per connection; keep the pool
	// at one so every query sees the same database.
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.AutoMigrate = true

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeReport struct {
	DeckTotal int    `json:"deckTotal"`
	Label     string `json:"label"`
}

func TestSaveAndLoadReport(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	in := fakeReport{DeckTotal: 42, Label: "master"}
	require.NoError(t, db.SaveReport(ctx, "t1", KindMaster, "", in))

	var out fakeReport
	require.NoError(t, db.LoadReport(ctx, "t1", KindMaster, "", &out))
	require.Equal(t, in, out)
}

func TestSaveReportUpserts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveReport(ctx, "t1", KindMaster, "", fakeReport{DeckTotal: 1}))
	require.NoError(t, db.SaveReport(ctx, "t1", KindMaster, "", fakeReport{DeckTotal: 2}))

	var out fakeReport
	require.NoError(t, db.LoadReport(ctx, "t1", KindMaster, "", &out))
	require.Equal(t, 2, out.DeckTotal)

	list, err := db.ListReports(ctx, KindMaster)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestGetReportNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetReport(context.Background(), "missing", KindMaster, "")
	require.True(t, errors.Is(err, ErrNotFound), "err = %v, want ErrNotFound", err)
}

func TestReportKeysAreIndependent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveReport(ctx, "t1", KindArchetype, "Charizard", fakeReport{DeckTotal: 5}))
	require.NoError(t, db.SaveReport(ctx, "t1", KindArchetype, "Gardevoir", fakeReport{DeckTotal: 7}))
	require.NoError(t, db.SaveReport(ctx, "t2", KindArchetype, "Charizard", fakeReport{DeckTotal: 9}))

	var out fakeReport
	require.NoError(t, db.LoadReport(ctx, "t1", KindArchetype, "Gardevoir", &out))
	require.Equal(t, 7, out.DeckTotal)

	list, err := db.ListReports(ctx, KindArchetype)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestDeleteReports(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveReport(ctx, "t1", KindMaster, "", fakeReport{DeckTotal: 1}))
	require.NoError(t, db.SaveReport(ctx, "t1", KindCardIndex, "", fakeReport{DeckTotal: 1}))
	require.NoError(t, db.SaveReport(ctx, "t2", KindMaster, "", fakeReport{DeckTotal: 2}))

	require.NoError(t, db.DeleteReports(ctx, "t1"))

	_, err := db.GetReport(ctx, "t1", KindMaster, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetReport(ctx, "t2", KindMaster, "")
	require.NoError(t, err)
}

func TestStoredPayloadIsJSON(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveReport(ctx, "t1", KindTrends, "", fakeReport{DeckTotal: 3, Label: "x"}))

	r, err := db.GetReport(ctx, "t1", KindTrends, "")
	require.NoError(t, err)
	require.True(t, json.Valid(r.Payload), "payload is not valid JSON: %s", r.Payload)
}
