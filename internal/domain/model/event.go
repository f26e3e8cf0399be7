// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Team is a participant competing across games. Teams are created by the
// admin tooling and never modified by scoring.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Delta is one signed point transfer produced by a game rule.
type Delta struct {
	TeamID int64 `json:"team_id"`
	Points int64 `json:"points"`
}

// ScoringEvent is a persisted Delta.
type ScoringEvent struct {
	ID           int64     `json:"id"`
	Game         Game      `json:"game"`
	TeamID       int64     `json:"team_id"`
	Points       int64     `json:"points"`
	SubmissionID uuid.UUID `json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryRow is a ScoringEvent joined with the team name.
type HistoryRow struct {
	ScoringEvent
	TeamName string `json:"team_name"`
}

// TeamScores pairs a team with every point delta recorded for it.
type TeamScores struct {
	Team   Team
	Deltas []int64
}

// LeaderboardEntry is a derived, never persisted, ranking row.
type LeaderboardEntry struct {
	Rank       int   `json:"rank"`
	Team       Team  `json:"team"`
	TotalScore int64 `json:"total_score"`
}
