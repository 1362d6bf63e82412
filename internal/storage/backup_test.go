package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/seers-orb/internal/storage/models"
)

func TestBackup(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.GraphEdits().Append(ctx, &models.GraphEdit{
		CollectionID: "c1", Kind: models.EditKindRemove, SourceID: "a", TargetID: "b",
	}))

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := db.Backup(ctx, dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
	require.NoError(t, VerifyBackup(ctx, path))

	restored, err := Open(ctx, DefaultConfig(path))
	require.NoError(t, err)
	defer restored.Close()
	edits, err := restored.GraphEdits().List(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, edits, 1)

	backups, err := ListBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, path, backups[0].Path)
	assert.Len(t, backups[0].Checksum, 64)
	assert.Positive(t, backups[0].Size)
}

func TestBackupErrors(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Backup(ctx, "")
	assert.Error(t, err)

	assert.Error(t, VerifyBackup(ctx, filepath.Join(t.TempDir(), "missing.db")))

	empty := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, VerifyBackup(ctx, empty))

	backups, err := ListBackups(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}
