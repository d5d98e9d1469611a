package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strideapp/stride/internal/model"
)

type ObjectiveRepository interface {
	// Create inserts the objective and its initial ledger entry in one
	// transaction. The initial entry carries a zero delta and establishes
	// the start value on the aggregation axis.
	Create(ctx context.Context, objective *model.Objective, initial *model.LedgerEntry) error
	ByID(ctx context.Context, userID, objectiveID string) (*model.Objective, error)
	Objectives(ctx context.Context, userID string) ([]*model.Objective, error)
	Update(ctx context.Context, objective *model.Objective) error
}

type objectiveRepository struct {
	db *sqlx.DB
}

func NewObjectiveRepository(db *sqlx.DB) ObjectiveRepository {
	return &objectiveRepository{db: db}
}

func (r *objectiveRepository) Create(ctx context.Context, objective *model.Objective, initial *model.LedgerEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("objective.create", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO objectives (id, user_id, name, unit, goal_type, start_value, current_value, end_value, archived, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.ExecContext(ctx, query,
		objective.ID,
		objective.UserID,
		objective.Name,
		objective.Unit,
		objective.GoalType,
		objective.StartValue,
		objective.CurrentValue,
		objective.EndValue,
		objective.Archived,
		objective.CreatedAt,
		objective.UpdatedAt,
	)
	if err != nil {
		return storeErr("objective.create", err)
	}

	_, err = tx.ExecContext(ctx, insertEntryQuery,
		initial.ID,
		initial.ObjectiveID,
		initial.UserID,
		initial.Delta,
		initial.Note,
		initial.LoggedAt,
		initial.CreatedAt,
	)
	if err != nil {
		return storeErr("objective.create", err)
	}

	err = tx.Commit()
	if err != nil {
		return rollbackErr("objective.create", err)
	}
	return nil
}

func (r *objectiveRepository) ByID(ctx context.Context, userID, objectiveID string) (*model.Objective, error) {
	objective := &model.Objective{}
	query := `SELECT * FROM objectives WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, objective, query, objectiveID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("objective.by_id")
	}
	if err != nil {
		return nil, storeErr("objective.by_id", err)
	}

	return objective, nil
}

func (r *objectiveRepository) Objectives(ctx context.Context, userID string) ([]*model.Objective, error) {
	var objectives []*model.Objective
	query := `SELECT * FROM objectives WHERE user_id = $1 ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &objectives, query, userID)
	if err != nil {
		return nil, storeErr("objective.list", err)
	}

	return objectives, nil
}

func (r *objectiveRepository) Update(ctx context.Context, objective *model.Objective) error {
	query := `UPDATE objectives
	          SET name = $1, unit = $2, goal_type = $3, end_value = $4, archived = $5, updated_at = $6
	          WHERE id = $7 AND user_id = $8`

	result, err := r.db.ExecContext(ctx, query,
		objective.Name,
		objective.Unit,
		objective.GoalType,
		objective.EndValue,
		objective.Archived,
		time.Now(),
		objective.ID,
		objective.UserID,
	)
	if err != nil {
		return storeErr("objective.update", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("objective.update", err)
	}
	if rows == 0 {
		return notFound("objective.update")
	}

	return nil
}
