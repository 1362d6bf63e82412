package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sql.Tx) error

// WithTransaction runs fn in a transaction, committing on success and rolling
// back on error or panic. Panics are re-raised after the rollback.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(tx)
}

// PurgeResult counts the rows removed by Purge.
type PurgeResult struct {
	Edits   int64
	Reports int64
}

// Purge removes every stored edit and report snapshot of a collection.
func (db *DB) Purge(ctx context.Context, collectionID string) (PurgeResult, error) {
	var result PurgeResult
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM graph_edits WHERE collection_id = ?`, collectionID)
		if err != nil {
			return fmt.Errorf("failed to delete graph edits: %w", err)
		}
		if result.Edits, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM analysis_reports WHERE collection_id = ?`, collectionID)
		if err != nil {
			return fmt.Errorf("failed to delete reports: %w", err)
		}
		result.Reports, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return PurgeResult{}, err
	}
	return result, nil
}
