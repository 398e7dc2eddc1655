package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/viewmodel"
)

type uGame interface {
	NewSession(ctx context.Context) (string, viewmodel.GameView, error)
	GetSession(ctx context.Context, sessionID string) (viewmodel.GameView, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (usecase.PlayResult, error)
	JumpTo(ctx context.Context, sessionID string, step int) (viewmodel.GameView, error)
}

type PlayRequest struct {
	Cell *int `json:"cell"`
}

type JumpRequest struct {
	Step *int `json:"step"`
}

type SessionResponse struct {
	SessionID string             `json:"session_id"`
	Game      viewmodel.GameView `json:"game"`
	Applied   *bool              `json:"applied,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger *slog.Logger
	uGame  uGame
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write ping response", "error", err)
	}
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	sessionID, view, err := that.uGame.NewSession(r.Context())
	if err != nil {
		that.writeError(w, "createSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, SessionResponse{SessionID: sessionID, Game: view})
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	view, err := that.uGame.GetSession(r.Context(), sessionID)
	if err != nil {
		that.writeError(w, "getSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, SessionResponse{SessionID: sessionID, Game: view})
}

func (that *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "endSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) play(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cell is required"})
		return
	}

	if *req.Cell < 0 || *req.Cell >= entity.BoardSize {
		that.writeError(w, "play", apperror.ErrInvalidCell)
		return
	}

	result, err := that.uGame.Play(r.Context(), sessionID, *req.Cell)
	if err != nil {
		that.writeError(w, "play", err)
		return
	}

	that.writeJSON(w, http.StatusOK, SessionResponse{SessionID: sessionID, Game: result.View, Applied: &result.Applied})
}

func (that *handlers) jump(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Step == nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "step is required"})
		return
	}

	view, err := that.uGame.JumpTo(r.Context(), sessionID, *req.Step)
	if err != nil {
		that.writeError(w, "jump", err)
		return
	}

	that.writeJSON(w, http.StatusOK, SessionResponse{SessionID: sessionID, Game: view})
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrStepOutOfRange):
		that.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: apperror.ErrStepOutOfRange.Error()})
	case errors.Is(err, apperror.ErrInvalidCell):
		that.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: apperror.ErrInvalidCell.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
