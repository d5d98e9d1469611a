package model

import (
	"time"
)

const (
	GoalTypeFixed   = "fixed"
	GoalTypeOngoing = "ongoing"
)

type Objective struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Name         string    `db:"name"`
	Unit         string    `db:"unit"`
	GoalType     string    `db:"goal_type"`
	StartValue   float64   `db:"start_value"`
	CurrentValue float64   `db:"current_value"`
	EndValue     *float64  `db:"end_value"`
	Archived     bool      `db:"archived"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
