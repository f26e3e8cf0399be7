package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/okian/liao/internal/domain/model"
)

type teamRow struct {
	bun.BaseModel `bun:"table:teams,alias:t"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull,unique"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (r teamRow) toModel() model.Team {
	return model.Team{ID: r.ID, Name: r.Name}
}

type scoringEventRow struct {
	bun.BaseModel `bun:"table:scoring_events,alias:se"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Game          string    `bun:"game,notnull"`
	TeamID        int64     `bun:"team_id,notnull"`
	Points        int64     `bun:"points,notnull"`
	SubmissionID  uuid.UUID `bun:"submission_id,notnull,type:uuid"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (r scoringEventRow) toModel() model.ScoringEvent {
	return model.ScoringEvent{
		ID:           r.ID,
		Game:         model.Game(r.Game),
		TeamID:       r.TeamID,
		Points:       r.Points,
		SubmissionID: r.SubmissionID,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type historyRow struct {
	ID           int64     `bun:"id"`
	Game         string    `bun:"game"`
	TeamID       int64     `bun:"team_id"`
	TeamName     string    `bun:"team_name"`
	Points       int64     `bun:"points"`
	SubmissionID uuid.UUID `bun:"submission_id"`
	CreatedAt    time.Time `bun:"created_at"`
}

type passcodeRow struct {
	bun.BaseModel `bun:"table:passcodes,alias:p"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Code          string    `bun:"code,notnull,unique"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}
