package storage

import "time"

// Stat is one trackable attribute owned by a single user.
// CumulativeXP and CurrentLevel are only written through the engine's award
// path; CurrentLevel is derived from CumulativeXP and never authoritative on
// its own.
type Stat struct {
	ID           int64
	UserID       string
	Name         string
	Description  *string
	Activities   []ExampleActivity
	CumulativeXP int
	CurrentLevel int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExampleActivity is a suggested way to earn XP on a stat. Purely advisory:
// nothing enforces the suggested amount.
type ExampleActivity struct {
	Description string `json:"description"`
	SuggestedXP int    `json:"suggestedXp"`
}

// XPGrant is one immutable ledger row. Grants are never updated or deleted
// except when their stat is deleted.
type XPGrant struct {
	ID         int64
	StatID     int64
	Amount     int
	SourceType string
	SourceRef  *string
	Reason     *string
	CreatedAt  time.Time
}
