package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/seers-orb/internal/storage/models"
)

// ReportRepository stores analysis report snapshots.
type ReportRepository interface {
	// Save stores a snapshot. A missing ID is generated; CreatedAt is set.
	Save(ctx context.Context, snapshot *models.ReportSnapshot) error

	// GetByID retrieves a snapshot. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*models.ReportSnapshot, error)

	// Latest retrieves the newest snapshot of a collection.
	// Returns ErrNotFound if the collection has none.
	Latest(ctx context.Context, collectionID string) (*models.ReportSnapshot, error)

	// List returns a collection's snapshots, newest first. limit <= 0 returns all.
	List(ctx context.Context, collectionID string, limit int) ([]*models.ReportSnapshot, error)

	// Prune keeps the newest keep snapshots of a collection and deletes the rest.
	Prune(ctx context.Context, collectionID string, keep int) (int64, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report snapshot repository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `id, collection_id, collection_name, node_count, edge_count, synergy_score, report_json, created_at`

func (r *reportRepository) Save(ctx context.Context, snapshot *models.ReportSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	snapshot.CreatedAt = time.Now().UTC()

	query := `INSERT INTO analysis_reports (` + reportColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.CollectionID,
		snapshot.CollectionName,
		snapshot.NodeCount,
		snapshot.EdgeCount,
		snapshot.SynergyScore,
		string(snapshot.ReportJSON),
		snapshot.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report snapshot: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.ReportSnapshot, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *reportRepository) Latest(ctx context.Context, collectionID string) (*models.ReportSnapshot, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM analysis_reports
		WHERE collection_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, collectionID))
}

func (r *reportRepository) List(ctx context.Context, collectionID string, limit int) ([]*models.ReportSnapshot, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM analysis_reports
		WHERE collection_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{collectionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []*models.ReportSnapshot
	for rows.Next() {
		snapshot, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *reportRepository) Prune(ctx context.Context, collectionID string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `
		DELETE FROM analysis_reports
		WHERE collection_id = ? AND rowid NOT IN (
			SELECT rowid FROM analysis_reports
			WHERE collection_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`
	result, err := r.db.ExecContext(ctx, query, collectionID, collectionID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune report snapshots: %w", err)
	}
	return result.RowsAffected()
}

func (r *reportRepository) scanOne(row *sql.Row) (*models.ReportSnapshot, error) {
	snapshot, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*models.ReportSnapshot, error) {
	snapshot := &models.ReportSnapshot{}
	var report, createdAt string
	if err := s.Scan(
		&snapshot.ID,
		&snapshot.CollectionID,
		&snapshot.CollectionName,
		&snapshot.NodeCount,
		&snapshot.EdgeCount,
		&snapshot.SynergyScore,
		&report,
		&createdAt,
	); err != nil {
		return nil, err
	}
	snapshot.ReportJSON = []byte(report)
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of report %s: %w", snapshot.ID, err)
	}
	snapshot.CreatedAt = ts
	return snapshot, nil
}
