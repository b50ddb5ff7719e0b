package models

import "time"

// ColleCatalog is a persisted upload of the slot-catalog CSV, stored
// verbatim alongside a parsed summary so the Input Normalizer can be
// re-run idempotently without a second source of truth for parsed rows.
type ColleCatalog struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"ownerId"`
	Name       string    `db:"name" json:"name"`
	RawCSV     string    `db:"raw_csv" json:"-"`
	GroupCount int       `db:"group_count" json:"groupCount"`
	WeekCount  int       `db:"week_count" json:"weekCount"`
	SlotCount  int       `db:"slot_count" json:"slotCount"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
