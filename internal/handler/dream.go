package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dreamtrack/dreamtrack/internal/ctxkeys"
	"github.com/dreamtrack/dreamtrack/internal/model"
	"github.com/dreamtrack/dreamtrack/internal/repository"
	"github.com/dreamtrack/dreamtrack/internal/service"
	"github.com/dreamtrack/dreamtrack/internal/validation"
)

type DreamHandler struct {
	dreams *service.DreamService
}

func NewDreamHandler(dreams *service.DreamService) *DreamHandler {
	return &DreamHandler{dreams: dreams}
}

type dreamRequest struct {
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Progress int          `json:"progress"`
	Goals    []model.Goal `json:"goals"`
}

func (h *DreamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	dreams, err := h.dreams.Dreams(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list dreams", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load dreams")
		return
	}

	writeJSON(w, http.StatusOK, dreams)
}

func (h *DreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	dream, err := h.dreams.ByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeDreamError(w, err, userID)
		return
	}

	writeJSON(w, http.StatusOK, dream)
}

func (h *DreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req dreamRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dream, err := h.dreams.Create(r.Context(), userID, req.Title, req.Category, req.Goals)
	if err != nil {
		h.writeDreamError(w, err, userID)
		return
	}

	writeJSON(w, http.StatusCreated, dream)
}

func (h *DreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req dreamRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dream, err := h.dreams.Update(r.Context(), userID, r.PathValue("id"), req.Title, req.Category, req.Progress, req.Goals)
	if err != nil {
		h.writeDreamError(w, err, userID)
		return
	}

	writeJSON(w, http.StatusOK, dream)
}

func (h *DreamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.dreams.Delete(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeDreamError(w, err, userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DreamHandler) writeDreamError(w http.ResponseWriter, err error, userID string) {
	switch {
	case errors.Is(err, repository.ErrDreamNotFound):
		writeError(w, http.StatusNotFound, "Dream not found")
	case errors.Is(err, validation.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("dream request failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Something went wrong, please retry")
	}
}
