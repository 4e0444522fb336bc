package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bengche/payvault-push/pkg/middleware"
	"github.com/bengche/payvault-push/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /notifications
// @Summary      List notifications
// @Description  Current user's notification feed with unread count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=Feed}
// @Failure      401 {object} response.APIResponse
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	feed, err := h.service.Feed(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	response.JSON(w, http.StatusOK, feed)
}

// MarkRead handles PATCH /notifications/{id}/read
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [patch]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotRecipient) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllRead handles PATCH /notifications/read-all
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /notifications/read-all [patch]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		response.InternalError(w, "Failed to mark all notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// PushRequest is the ingest payload handed to the delivery channel.
type PushRequest struct {
	UserID int64             `json:"user_id"`
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Push handles POST /notifications/push
// @Summary      Store and dispatch a notification
// @Description  Persists a notification and pushes it to the recipient's connected background workers
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body PushRequest true "Notification to dispatch"
// @Success      201 {object} response.APIResponse{data=Notification}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications/push [post]
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.UserID == 0 || req.Title == "" {
		response.BadRequest(w, "user_id and title are required")
		return
	}
	if req.Type == "" {
		req.Type = "default"
	}

	notification, err := h.service.Push(r.Context(), req.UserID, req.Type, req.Title, req.Body, req.Data)
	if err != nil {
		response.InternalError(w, "Failed to dispatch notification")
		return
	}

	response.JSON(w, http.StatusCreated, notification)
}
