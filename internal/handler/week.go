package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dreamtrack/dreamtrack/internal/ctxkeys"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/service"
)

type WeekHandler struct {
	rollover   *service.RolloverService
	completion *service.CompletionService
	weeks      repository.WeekRepository
}

func NewWeekHandler(rollover *service.RolloverService, completion *service.CompletionService, weeks repository.WeekRepository) *WeekHandler {
	return &WeekHandler{
		rollover:   rollover,
		completion: completion,
		weeks:      weeks,
	}
}

type weekResponse struct {
	UserID    string               `json:"userId"`
	WeekID    string               `json:"weekId"`
	WeekStart time.Time            `json:"weekStartDate"`
	WeekEnd   time.Time            `json:"weekEndDate"`
	Goals     []model.GoalInstance `json:"goals"`
	Stats     model.WeekStats      `json:"stats"`
}

func toWeekResponse(doc *model.WeekDocument) weekResponse {
	return weekResponse{
		UserID:    doc.UserID,
		WeekID:    doc.WeekID,
		WeekStart: doc.WeekStart,
		WeekEnd:   doc.WeekEnd,
		Goals:     doc.Visible(),
		Stats:     doc.Stats,
	}
}

// CurrentWeek returns the current week document, rolling over first if a
// week boundary was crossed. A failed rollover is non-fatal: the stale
// document is served, the failure logged, and the next request retries.
func (h *WeekHandler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	doc, err := h.rollover.CheckAndRoll(r.Context(), userID)
	if err != nil {
		slog.Warn("rollover failed, serving stale week", "error", err, "user_id", userID)
		doc, err = h.weeks.Current(r.Context(), userID)
		if err != nil {
			slog.Error("failed to load week document", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "Failed to load week")
			return
		}
	}

	writeJSON(w, http.StatusOK, toWeekResponse(doc))
}

func (h *WeekHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.completion.Toggle)
}

func (h *WeekHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.completion.Increment)
}

func (h *WeekHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.completion.Decrement)
}

func (h *WeekHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.completion.Skip)
}

type mutateFunc func(ctx context.Context, userID, instanceID string) (*model.WeekDocument, error)

func (h *WeekHandler) mutate(w http.ResponseWriter, r *http.Request, fn mutateFunc) {
	userID := ctxkeys.UserID(r.Context())
	instanceID := r.PathValue("id")

	doc, err := fn(r.Context(), userID, instanceID)
	if err != nil {
		h.writeMutationError(w, err, userID, instanceID)
		return
	}

	writeJSON(w, http.StatusOK, toWeekResponse(doc))
}

func (h *WeekHandler) writeMutationError(w http.ResponseWriter, err error, userID, instanceID string) {
	switch {
	case errors.Is(err, service.ErrInstanceNotFound) || errors.Is(err, repository.ErrWeekNotFound):
		writeError(w, http.StatusNotFound, "Goal not found")
	case errors.Is(err, service.ErrFrequencyGoal) || errors.Is(err, service.ErrSimpleGoal):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDeadlineCompleted):
		writeError(w, http.StatusConflict, "Deadline goal already completed")
	case errors.Is(err, service.ErrConflictingWrite):
		slog.Error("dual write conflict", "error", err, "user_id", userID, "goal_id", instanceID)
		writeError(w, http.StatusConflict, "Goal and template diverged, please retry")
	default:
		slog.Error("failed to update goal", "error", err, "user_id", userID, "goal_id", instanceID)
		writeError(w, http.StatusInternalServerError, "Failed to update goal, please retry")
	}
}
