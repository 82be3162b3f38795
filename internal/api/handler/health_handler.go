package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
)

type HealthHandler struct {
	client remote.ICommerceClient
}

func NewHealthHandler(client remote.ICommerceClient) *HealthHandler {
	if client == nil {
		panic("client cannot be nil")
	}
	return &HealthHandler{client: client}
}

// Health GET /health 檢查遠端服務是否可連線
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		response.ErrorJSON(w, http.StatusServiceUnavailable, remote.UserMessage(err))
		return
	}
	response.SuccessJSON(w, dto.HealthDTO{Remote: "ok"})
}
