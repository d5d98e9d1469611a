package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strideapp/stride/internal/model"
)

const insertEntryQuery = `INSERT INTO ledger_entries (id, objective_id, user_id, delta, note, logged_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

type LedgerEntryRepository interface {
	// Append inserts the entry and adds its delta to the objective's running
	// total in one transaction. The total update is a relative SQL increment,
	// so concurrent appends serialize at the objective row instead of racing
	// on a value read in Go.
	Append(ctx context.Context, entry *model.LedgerEntry) error
	// UndoLast deletes the most recently logged entry (by logged_at, not
	// insertion order) and subtracts its delta from the running total,
	// clamped at zero, in one transaction.
	UndoLast(ctx context.Context, userID, objectiveID string) (*model.LedgerEntry, error)
	Entries(ctx context.Context, userID, objectiveID string) ([]*model.LedgerEntry, error)
}

type ledgerEntryRepository struct {
	db *sqlx.DB
}

func NewLedgerEntryRepository(db *sqlx.DB) LedgerEntryRepository {
	return &ledgerEntryRepository{db: db}
}

func (r *ledgerEntryRepository) Append(ctx context.Context, entry *model.LedgerEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("ledger.append", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertEntryQuery,
		entry.ID,
		entry.ObjectiveID,
		entry.UserID,
		entry.Delta,
		entry.Note,
		entry.LoggedAt,
		entry.CreatedAt,
	)
	if err != nil {
		return storeErr("ledger.append", err)
	}

	query := `UPDATE objectives
	          SET current_value = current_value + $1, updated_at = $2
	          WHERE id = $3 AND user_id = $4`

	result, err := tx.ExecContext(ctx, query, entry.Delta, time.Now(), entry.ObjectiveID, entry.UserID)
	if err != nil {
		return storeErr("ledger.append", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("ledger.append", err)
	}
	if rows == 0 {
		return notFound("ledger.append")
	}

	err = tx.Commit()
	if err != nil {
		return rollbackErr("ledger.append", err)
	}
	return nil
}

func (r *ledgerEntryRepository) UndoLast(ctx context.Context, userID, objectiveID string) (*model.LedgerEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storeErr("ledger.undo", err)
	}
	defer tx.Rollback()

	entry := &model.LedgerEntry{}
	query := `SELECT * FROM ledger_entries
	          WHERE objective_id = $1 AND user_id = $2
	          ORDER BY logged_at DESC LIMIT 1`

	err = tx.GetContext(ctx, entry, query, objectiveID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("ledger.undo")
	}
	if err != nil {
		return nil, storeErr("ledger.undo", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = $1`, entry.ID)
	if err != nil {
		return nil, storeErr("ledger.undo", err)
	}

	// CASE instead of GREATEST/MAX keeps the clamp portable across sqlite
	// and postgres.
	update := `UPDATE objectives
	          SET current_value = CASE WHEN current_value - $1 < 0 THEN 0 ELSE current_value - $1 END,
	              updated_at = $2
	          WHERE id = $3 AND user_id = $4`

	_, err = tx.ExecContext(ctx, update, entry.Delta, time.Now(), objectiveID, userID)
	if err != nil {
		return nil, storeErr("ledger.undo", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, rollbackErr("ledger.undo", err)
	}
	return entry, nil
}

func (r *ledgerEntryRepository) Entries(ctx context.Context, userID, objectiveID string) ([]*model.LedgerEntry, error) {
	var entries []*model.LedgerEntry
	query := `SELECT * FROM ledger_entries
	          WHERE objective_id = $1 AND user_id = $2
	          ORDER BY logged_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, objectiveID, userID)
	if err != nil {
		return nil, storeErr("ledger.entries", err)
	}

	return entries, nil
}
