package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dreamtrack/dreamtrack/internal/ctxkeys"
	"github.com/dreamtrack/dreamtrack/internal/service"
	"github.com/dreamtrack/dreamtrack/internal/validation"
)

type ConnectHandler struct {
	connects *service.ConnectService
}

func NewConnectHandler(connects *service.ConnectService) *ConnectHandler {
	return &ConnectHandler{connects: connects}
}

func (h *ConnectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	connects, err := h.connects.Connects(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list connects", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load connects")
		return
	}

	writeJSON(w, http.StatusOK, connects)
}

func (h *ConnectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	connect, err := h.connects.Record(r.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, validation.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to record connect", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to record connect")
		return
	}

	writeJSON(w, http.StatusCreated, connect)
}
