package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	service "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/domain/model"
	"github.com/okian/liao/internal/domain/scoring"
)

// GamesDependencies is the scoring surface used by GamesHandler.
type GamesDependencies interface {
	Preview(ctx context.Context, game model.Game, sub scoring.Submission) (scoring.Result, error)
	Submit(ctx context.Context, req service.SubmitRequest) (service.SubmitResult, error)
}

// GamesHandler scores game dialogs.
type GamesHandler struct {
	deps GamesDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// formValue is a raw form field. Clients may send a string, a number or
// null; all of them reach the parser as text.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("form value must be a string or number: %w", err)
		}
		*v = formValue(n.String())
	}
	return nil
}

type molkkySideRequest struct {
	TeamID int64     `json:"team_id"`
	Score  formValue `json:"score"`
}

type bowlingRequest struct {
	Score    formValue `json:"score"`
	Bonus    formValue `json:"bonus"`
	Handicap bool      `json:"handicap"`
}

type submissionRequest struct {
	SubmissionID *uuid.UUID `json:"submission_id,omitempty"`
	Molkky       struct {
		TeamA molkkySideRequest `json:"team_a"`
		TeamB molkkySideRequest `json:"team_b"`
	} `json:"molkky"`
	Scores  map[int64]formValue      `json:"scores"`
	Bowling map[int64]bowlingRequest `json:"bowling"`
}

func (req submissionRequest) submission() scoring.Submission {
	sub := scoring.Submission{
		Molkky: scoring.MolkkyInput{
			TeamA: scoring.MolkkySide{TeamID: req.Molkky.TeamA.TeamID, Score: string(req.Molkky.TeamA.Score)},
			TeamB: scoring.MolkkySide{TeamID: req.Molkky.TeamB.TeamID, Score: string(req.Molkky.TeamB.Score)},
		},
		Scores:  make(map[int64]string, len(req.Scores)),
		Bowling: make(map[int64]scoring.BowlingEntry, len(req.Bowling)),
	}
	for id, v := range req.Scores {
		sub.Scores[id] = string(v)
	}
	for id, e := range req.Bowling {
		sub.Bowling[id] = scoring.BowlingEntry{Score: string(e.Score), Bonus: string(e.Bonus), Handicap: e.Handicap}
	}
	return sub
}

func decodeSubmission(r *http.Request) (model.Game, submissionRequest, error) {
	var req submissionRequest
	raw, err := url.PathUnescape(chi.URLParam(r, "game"))
	if err != nil {
		return "", req, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	game, err := model.ParseGame(raw)
	if err != nil {
		return "", req, fmt.Errorf("%w: %v", ErrUnknownGame, err)
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", req, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return game, req, nil
}

// HandlePreview handles POST /api/games/{game}/preview. Nothing is written.
func (h *GamesHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview"
	game, req, err := decodeSubmission(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	res, err := h.deps.Preview(r.Context(), game, req.submission())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSubmit handles POST /api/games/{game}/submissions.
func (h *GamesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	game, req, err := decodeSubmission(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	sreq := service.SubmitRequest{Game: game, Submission: req.submission()}
	if req.SubmissionID != nil {
		sreq.SubmissionID = *req.SubmissionID
	} else if key := r.Header.Get("Idempotency-Key"); key != "" {
		id, err := uuid.Parse(key)
		if err != nil {
			writeServiceError(w, op, fmt.Errorf("%w: idempotency key: %v", ErrBadRequest, err))
			return
		}
		sreq.SubmissionID = id
	}
	res, err := h.deps.Submit(r.Context(), sreq)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw)
	}
	return id, nil
}
