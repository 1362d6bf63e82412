package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/seers-orb/internal/storage/models"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	assert.Equal(t, "test.db", config.Path)
	assert.Equal(t, 4, config.MaxOpenConns)
	assert.Equal(t, 5*time.Second, config.BusyTimeout)
	assert.Equal(t, "WAL", config.JournalMode)
	assert.True(t, config.AutoMigrate)
}

func TestConfigDSN(t *testing.T) {
	dsn := DefaultConfig("/tmp/x.db").dsn()
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")

	assert.NotContains(t, DefaultConfig(MemoryPath).dsn(), "journal_mode")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(ctx))
	assert.NotNil(t, db.Conn())

	var tables int
	err = db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('graph_edits', 'analysis_reports')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "orb.db")

	db, err := Open(ctx, DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an up-to-date database is a no-op migration.
	db, err = Open(ctx, DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO graph_edits (collection_id, kind, source_id, target_id, created_at) VALUES ('c', 'remove', 'a', 'b', '')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	edits, err := db.GraphEdits().List(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, edits, "failed transaction is rolled back")

	assert.Panics(t, func() {
		_ = db.WithTransaction(ctx, func(tx *sql.Tx) error {
			panic("bad")
		})
	})
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	edits := db.GraphEdits()
	reports := db.Reports()
	for _, cid := range []string{"keep", "drop"} {
		require.NoError(t, edits.Append(ctx, &models.GraphEdit{CollectionID: cid, Kind: models.EditKindRemove, SourceID: "a", TargetID: "b"}))
		require.NoError(t, edits.Append(ctx, &models.GraphEdit{CollectionID: cid, Kind: models.EditKindRemove, SourceID: "b", TargetID: "c"}))
		require.NoError(t, reports.Save(ctx, &models.ReportSnapshot{CollectionID: cid, ReportJSON: []byte("{}")}))
	}

	result, err := db.Purge(ctx, "drop")
	require.NoError(t, err)
	assert.Equal(t, PurgeResult{Edits: 2, Reports: 1}, result)

	kept, err := edits.List(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, kept, 2)
	_, err = reports.Latest(ctx, "keep")
	assert.NoError(t, err)
}
