package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/strideapp/stride/internal/model"
)

type WidgetRepository interface {
	ByID(ctx context.Context, widgetID string) (*model.Widget, error)
	// ByObjective returns every widget with a metric referencing the
	// objective. Used by the invalidation fan-out after ledger mutations.
	ByObjective(ctx context.Context, objectiveID string) ([]*model.Widget, error)
}

type widgetRepository struct {
	db *sqlx.DB
}

func NewWidgetRepository(db *sqlx.DB) WidgetRepository {
	return &widgetRepository{db: db}
}

func (r *widgetRepository) ByID(ctx context.Context, widgetID string) (*model.Widget, error) {
	widget := &model.Widget{}
	query := `SELECT * FROM widgets WHERE id = $1`

	err := r.db.GetContext(ctx, widget, query, widgetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("widget.by_id")
	}
	if err != nil {
		return nil, storeErr("widget.by_id", err)
	}

	metricsQuery := `SELECT * FROM widget_metrics WHERE widget_id = $1 ORDER BY id ASC`
	err = r.db.SelectContext(ctx, &widget.Metrics, metricsQuery, widgetID)
	if err != nil {
		return nil, storeErr("widget.by_id", err)
	}

	return widget, nil
}

func (r *widgetRepository) ByObjective(ctx context.Context, objectiveID string) ([]*model.Widget, error) {
	var widgets []*model.Widget
	query := `SELECT w.* FROM widgets w
	          JOIN widget_metrics m ON m.widget_id = w.id
	          WHERE m.objective_id = $1
	          GROUP BY w.id`

	err := r.db.SelectContext(ctx, &widgets, query, objectiveID)
	if err != nil {
		return nil, storeErr("widget.by_objective", err)
	}

	return widgets, nil
}
