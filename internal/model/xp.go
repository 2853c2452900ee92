// internal/model/xp.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// XPLedgerRecord is the durable per-user XP summary row. The history lives
// in xp_history_entries; this row is the source of truth for the total.
type XPLedgerRecord struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalXP   int       `gorm:"not null;default:0" json:"total_xp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (XPLedgerRecord) TableName() string {
	return "xp_ledgers"
}

// XPHistoryEntry is an immutable audit record of one XP delta. Amount is
// signed: positive for grants, negative for removals. Only ever trimmed from
// the tail of a user's history, never mutated.
type XPHistoryEntry struct {
	EntryID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"not null" json:"reason"`
	Icon      string    `json:"icon"`
	IsBonus   bool      `gorm:"not null;default:false" json:"is_bonus"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	// Position preserves issuance order across persistence (0 = newest).
	Position int `gorm:"not null;default:0" json:"-"`
}

func (XPHistoryEntry) TableName() string {
	return "xp_history_entries"
}

// XPProcessedLog marks a study log as already converted into XP.
type XPProcessedLog struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LogID     string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (XPProcessedLog) TableName() string {
	return "xp_processed_logs"
}

type GrantXPRequest struct {
	Amount  int    `json:"amount" validate:"gte=0"`
	Reason  string `json:"reason" validate:"required,max=200"`
	Icon    string `json:"icon" validate:"omitempty,max=30"`
	IsBonus bool   `json:"is_bonus"`
}

type RemoveXPRequest struct {
	Amount int    `json:"amount" validate:"gte=0"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// EloUpgradeResponse is the one-shot "rank upgraded" signal.
type EloUpgradeResponse struct {
	From Elo `json:"from"`
	To   Elo `json:"to"`
}

// XPOverviewResponse is the engine state exposed to the UI.
type XPOverviewResponse struct {
	TotalXP   int                 `json:"total_xp"`
	History   []XPHistoryEntry    `json:"history"`
	Elo       Elo                 `json:"elo"`
	NextElo   *Elo                `json:"next_elo,omitempty"`
	Progress  float64             `json:"progress"`
	XPForNext int                 `json:"xp_for_next"`
	Upgrade   *EloUpgradeResponse `json:"upgrade,omitempty"`
}
