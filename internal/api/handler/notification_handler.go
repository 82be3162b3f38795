package handler

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService service.INotificationService
}

func NewNotificationHandler(notificationService service.INotificationService) *NotificationHandler {
	if notificationService == nil {
		panic("notificationService cannot be nil")
	}
	return &NotificationHandler{notificationService: notificationService}
}

// List GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)
}

// UnreadCount GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	response.SuccessJSON(w, dto.UnreadCountDTO{Unread: h.notificationService.UnreadCount()})
}

// MarkRead POST /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), id); err != nil {
		response.WriteError(w, err)
		return
	}
	h.writeList(w)
}

// MarkAllRead POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.notificationService.MarkAllRead(r.Context())
	h.writeList(w)
}

// Remove DELETE /notifications/{id}
func (h *NotificationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.notificationService.Remove(r.Context(), id); err != nil {
		response.WriteError(w, err)
		return
	}
	h.writeList(w)
}

// ClearAll DELETE /notifications
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.notificationService.ClearAll(r.Context())
	h.writeList(w)
}

func (h *NotificationHandler) writeList(w http.ResponseWriter) {
	response.SuccessJSON(w, dto.NotificationListDTO{
		Items:  h.notificationService.List(),
		Unread: h.notificationService.UnreadCount(),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid notification id.")
		return 0, false
	}
	return id, true
}
