package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bengche/payvault-push/pkg/middleware"
	"github.com/bengche/payvault-push/pkg/response"
)

// Handler handles HTTP requests for push subscription operations
type Handler struct {
	service *Service
}

// NewHandler creates a new subscription handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// VAPIDPublicKey handles GET /notifications/vapid-public-key. Served
// without authentication: the key is public by definition and setup fetches
// it before any state exists.
// @Summary      VAPID public key
// @Tags         subscriptions
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/vapid-public-key [get]
func (h *Handler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.PublicKey()
	if err != nil {
		response.NotFound(w, "Push is not configured")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"publicKey": key})
}

// SubscribeRequest wraps the browser subscription JSON.
type SubscribeRequest struct {
	Subscription Payload `json:"subscription"`
}

// Subscribe handles POST /notifications/subscribe
// @Summary      Upload a push subscription
// @Description  Stores the browser-issued credential so the server can target this installation
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body SubscribeRequest true "Browser push subscription"
// @Success      201 {object} response.APIResponse{data=Subscription}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	sub, err := h.service.Save(r.Context(), userID, &req.Subscription)
	if err != nil {
		if errors.Is(err, ErrMissingEndpoint) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to save push subscription")
		return
	}

	response.JSON(w, http.StatusCreated, sub)
}

// UnsubscribeRequest identifies the subscription to drop.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /notifications/subscribe
// @Summary      Remove a push subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request body UnsubscribeRequest true "Subscription endpoint"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /notifications/subscribe [delete]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.Remove(r.Context(), req.Endpoint); err != nil {
		if errors.Is(err, ErrMissingEndpoint) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to remove push subscription")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Push subscription removed"})
}
