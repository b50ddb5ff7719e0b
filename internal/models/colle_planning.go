package models

import "time"

// ColleSolveMode mirrors the solver's three escalation tiers.
type ColleSolveMode string

const (
	ColleSolveModeStrict   ColleSolveMode = "strict"
	ColleSolveModeRelaxed  ColleSolveMode = "relaxed"
	ColleSolveModeMaximize ColleSolveMode = "maximize"
)

// CollePlanning is one solved (or extended) assignment table, derived from
// exactly one catalog and solve mode.
type CollePlanning struct {
	ID             string         `db:"id" json:"id"`
	CatalogID      string         `db:"catalog_id" json:"catalogId"`
	Mode           ColleSolveMode `db:"mode" json:"mode"`
	AssignmentCSV  string         `db:"assignment_csv" json:"-"`
	Extended       bool           `db:"extended" json:"extended"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}
