package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/notification"
	"github.com/danielBingham/communities-sub006/internal/pkg/logger"
	"github.com/danielBingham/communities-sub006/internal/port"
)

type dispatchRequest struct {
	Key          string         `json:"key" validate:"required"`
	Context      map[string]any `json:"context"`
	RecipientIDs []string       `json:"recipientIds" validate:"required,min=1,dive,required"`
}

type dispatchResponse struct {
	Key        string                  `json:"key"`
	Delivered  int                     `json:"delivered"`
	Failed     int                     `json:"failed"`
	Skipped    int                     `json:"skipped"`
	Deliveries []notification.Delivery `json:"deliveries"`
}

func (h *Handler) dispatchNotification(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tctx := notification.Context(req.Context)
	if tctx == nil {
		tctx = notification.Context{}
	}
	if _, ok := tctx["host"]; !ok {
		tctx["host"] = h.BaseURL
	}

	recipients, err := h.Recipients.FindByIDs(r.Context(), req.RecipientIDs)
	if err != nil {
		logger.From(r.Context()).Error("recipient lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "recipient lookup failed")
		return
	}

	result, err := h.Dispatcher.Dispatch(r.Context(), req.Key, tctx, recipients)
	if err != nil {
		var unknown *notification.UnknownKeyError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, unknown.Error())
			return
		}
		logger.From(r.Context()).Error("dispatch failed", "key", req.Key, "error", err)
		writeError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	writeJSON(w, http.StatusOK, dispatchResponse{
		Key:        result.Key,
		Delivered:  result.Count(notification.StatusDelivered),
		Failed:     result.Count(notification.StatusFailed),
		Skipped:    result.Count(notification.StatusSkipped),
		Deliveries: result.Deliveries,
	})
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", h.PageLimit)

	items, err := h.Store.ListByRecipient(r.Context(), userID, offset, limit)
	if err != nil {
		logger.From(r.Context()).Error("list notifications failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "list notifications failed")
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if err := h.Store.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		logger.From(r.Context()).Error("mark read failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "mark read failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
