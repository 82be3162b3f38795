package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// GetOrder GET /orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, view)
}
