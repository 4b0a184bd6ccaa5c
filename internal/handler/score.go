package handler

import (
	"log/slog"
	"net/http"

	"github.com/dreamtrack/dreamtrack/internal/ctxkeys"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/service"
)

type ScoreHandler struct {
	scoring  *service.ScoringService
	archives repository.ArchiveRepository
}

func NewScoreHandler(scoring *service.ScoringService, archives repository.ArchiveRepository) *ScoreHandler {
	return &ScoreHandler{scoring: scoring, archives: archives}
}

func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	result, err := h.scoring.ScoreForUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to compute score", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to compute score")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ScoreHandler) Archives(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	archives, err := h.archives.Archives(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list archives", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load past weeks")
		return
	}

	writeJSON(w, http.StatusOK, archives)
}
