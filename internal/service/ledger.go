package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/repository"
)

var (
	ErrEndValueRequired = errors.New("fixed objectives require an end value greater than the start value")
)

// LedgerService owns objective lifecycle and ledger mutations. Every
// mutation awaits the snapshot invalidation fan-out before returning, so the
// next read recomputes from fresh data.
type LedgerService struct {
	objectives  repository.ObjectiveRepository
	ledger      repository.LedgerEntryRepository
	invalidator *cache.Invalidator
}

func NewLedgerService(
	objectives repository.ObjectiveRepository,
	ledger repository.LedgerEntryRepository,
	invalidator *cache.Invalidator,
) *LedgerService {
	return &LedgerService{
		objectives:  objectives,
		ledger:      ledger,
		invalidator: invalidator,
	}
}

// CreateObjective inserts the objective together with an initial zero-delta
// ledger entry that anchors the start value on the aggregation axis.
func (s *LedgerService) CreateObjective(ctx context.Context, userID, name, unit, goalType string, startValue float64, endValue *float64) (*model.Objective, error) {
	if goalType == model.GoalTypeFixed && (endValue == nil || *endValue <= startValue) {
		return nil, ErrEndValueRequired
	}

	now := time.Now()
	objective := &model.Objective{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		Unit:         unit,
		GoalType:     goalType,
		StartValue:   startValue,
		CurrentValue: startValue,
		EndValue:     endValue,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	initial := &model.LedgerEntry{
		ID:          uuid.New().String(),
		ObjectiveID: objective.ID,
		UserID:      userID,
		Delta:       0,
		LoggedAt:    now,
		CreatedAt:   now,
	}

	err := s.objectives.Create(ctx, objective, initial)
	if err != nil {
		return nil, err
	}

	return objective, nil
}

func (s *LedgerService) Objective(ctx context.Context, userID, objectiveID string) (*model.Objective, error) {
	return s.objectives.ByID(ctx, userID, objectiveID)
}

func (s *LedgerService) Objectives(ctx context.Context, userID string) ([]*model.Objective, error) {
	return s.objectives.Objectives(ctx, userID)
}

func (s *LedgerService) UpdateObjective(ctx context.Context, objective *model.Objective) error {
	err := s.objectives.Update(ctx, objective)
	if err != nil {
		return err
	}

	s.invalidate(ctx, objective.ID)
	return nil
}

// Append logs a progress delta. loggedAt defaults to now when the caller
// does not supply one; it is the aggregation axis, so backdated entries are
// allowed.
func (s *LedgerService) Append(ctx context.Context, userID, objectiveID string, delta float64, note string, loggedAt *time.Time) (*model.LedgerEntry, error) {
	// Ownership check before writing.
	_, err := s.objectives.ByID(ctx, userID, objectiveID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	at := now
	if loggedAt != nil {
		at = *loggedAt
	}

	entry := &model.LedgerEntry{
		ID:          uuid.New().String(),
		ObjectiveID: objectiveID,
		UserID:      userID,
		Delta:       delta,
		Note:        note,
		LoggedAt:    at,
		CreatedAt:   now,
	}

	err = s.ledger.Append(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, objectiveID)
	return entry, nil
}

// UndoLast removes the most recently logged entry. The running total is
// clamped at zero, so undo is not always the exact inverse of append when
// earlier corrections pushed the value near zero.
func (s *LedgerService) UndoLast(ctx context.Context, userID, objectiveID string) (*model.LedgerEntry, error) {
	entry, err := s.ledger.UndoLast(ctx, userID, objectiveID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, objectiveID)
	return entry, nil
}

func (s *LedgerService) Entries(ctx context.Context, userID, objectiveID string) ([]*model.LedgerEntry, error) {
	return s.ledger.Entries(ctx, userID, objectiveID)
}

// invalidate is awaited but best-effort: a purge failure is logged, not
// surfaced, since the ledger write already committed.
func (s *LedgerService) invalidate(ctx context.Context, objectiveID string) {
	err := s.invalidator.InvalidateObjective(ctx, objectiveID)
	if err != nil {
		slog.Error("failed to invalidate snapshots", "error", err, "objective_id", objectiveID)
	}
}
