package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/seers-orb/internal/storage/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is how timestamps are stored in TEXT columns.
const timeLayout = "2006-01-02 15:04:05.999999"

// GraphEditRepository stores user edits to synergy graphs.
type GraphEditRepository interface {
	// Append records an edit and sets its ID and CreatedAt.
	Append(ctx context.Context, edit *models.GraphEdit) error

	// List returns a collection's edits in the order they were made.
	List(ctx context.Context, collectionID string) ([]*models.GraphEdit, error)

	// Delete removes a single edit.
	Delete(ctx context.Context, id int64) error

	// Clear removes every edit of a collection and returns how many were removed.
	Clear(ctx context.Context, collectionID string) (int64, error)
}

type graphEditRepository struct {
	db *sql.DB
}

// NewGraphEditRepository creates a new graph edit repository.
func NewGraphEditRepository(db *sql.DB) GraphEditRepository {
	return &graphEditRepository{db: db}
}

func (r *graphEditRepository) Append(ctx context.Context, edit *models.GraphEdit) error {
	if edit.Kind != models.EditKindAdd && edit.Kind != models.EditKindRemove {
		return fmt.Errorf("invalid graph edit kind %q", edit.Kind)
	}

	query := `
		INSERT INTO graph_edits (collection_id, kind, source_id, target_id, interaction_type, weight, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	edit.CreatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		edit.CollectionID,
		edit.Kind,
		edit.SourceID,
		edit.TargetID,
		edit.InteractionType,
		edit.Weight,
		edit.Description,
		edit.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert graph edit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	edit.ID = id
	return nil
}

func (r *graphEditRepository) List(ctx context.Context, collectionID string) ([]*models.GraphEdit, error) {
	query := `
		SELECT id, collection_id, kind, source_id, target_id, interaction_type, weight, description, created_at
		FROM graph_edits
		WHERE collection_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query graph edits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edits []*models.GraphEdit
	for rows.Next() {
		edit := &models.GraphEdit{}
		var createdAt string
		if err := rows.Scan(
			&edit.ID,
			&edit.CollectionID,
			&edit.Kind,
			&edit.SourceID,
			&edit.TargetID,
			&edit.InteractionType,
			&edit.Weight,
			&edit.Description,
			&createdAt,
		); err != nil {
			return nil, err
		}
		ts, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of graph edit %d: %w", edit.ID, err)
		}
		edit.CreatedAt = ts
		edits = append(edits, edit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edits, nil
}

func (r *graphEditRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM graph_edits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete graph edit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *graphEditRepository) Clear(ctx context.Context, collectionID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM graph_edits WHERE collection_id = ?`, collectionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear graph edits: %w", err)
	}
	return result.RowsAffected()
}
