package model

import (
	"time"
)

// LedgerEntry is one signed progress delta against an objective.
// Entries are append-only; only the most recent one may be deleted (undo).
type LedgerEntry struct {
	ID          string    `db:"id"`
	ObjectiveID string    `db:"objective_id"`
	UserID      string    `db:"user_id"`
	Delta       float64   `db:"delta"`
	Note        string    `db:"note"`
	LoggedAt    time.Time `db:"logged_at"`
	CreatedAt   time.Time `db:"created_at"`
}
