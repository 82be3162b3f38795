package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
}

func NewCheckoutHandler(checkoutService service.ICheckoutService) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService}
}

// StockReport GET /checkout/stock
// 第一次呼叫時開啟結帳畫面，之後回傳背景維護的最新結果
func (h *CheckoutHandler) StockReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.checkoutService.Report()
	if !ok {
		report = h.checkoutService.Open(r.Context())
	}
	response.SuccessJSON(w, report)
}

// Submit POST /checkout
// body 可省略
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	order, err := h.checkoutService.Submit(r.Context(), req.Notes)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	h.checkoutService.Close()
	response.CreatedJSON(w, order)
}
