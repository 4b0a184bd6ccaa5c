package model

import (
	"time"
)

const (
	ScoreSourceDream   = "dream"
	ScoreSourceConnect = "connect"
	ScoreSourceWeek    = "week"
)

// ScoreEntry is one line of the append-only scoring ledger. The total is
// always recomputable from source documents, never stored as sole truth.
type ScoreEntry struct {
	Date     time.Time `json:"date"`
	Source   string    `json:"source"` // dream, connect, week
	Points   int       `json:"points"`
	Activity string    `json:"activity"`
}

type ScoreResult struct {
	TotalScore int          `json:"totalScore"`
	Entries    []ScoreEntry `json:"entries"`
}
