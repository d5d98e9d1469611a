package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/strideapp/stride/internal/db"
	"github.com/strideapp/stride/internal/model"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func createObjective(t *testing.T, repo ObjectiveRepository, id, userID string, start float64) *model.Objective {
	t.Helper()

	now := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	objective := &model.Objective{
		ID:           id,
		UserID:       userID,
		Name:         "read books",
		Unit:         "pages",
		GoalType:     model.GoalTypeOngoing,
		StartValue:   start,
		CurrentValue: start,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := &model.LedgerEntry{
		ID:          id + "-initial",
		ObjectiveID: id,
		UserID:      userID,
		Delta:       0,
		LoggedAt:    now,
		CreatedAt:   now,
	}
	require.NoError(t, repo.Create(context.Background(), objective, initial))
	return objective
}

func appendEntry(t *testing.T, repo LedgerEntryRepository, objectiveID, userID string, delta float64, loggedAt time.Time) *model.LedgerEntry {
	t.Helper()

	entry := &model.LedgerEntry{
		ID:          loggedAt.Format("20060102T150405") + "-" + objectiveID,
		ObjectiveID: objectiveID,
		UserID:      userID,
		Delta:       delta,
		LoggedAt:    loggedAt,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}
