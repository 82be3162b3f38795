package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// GetCart GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.FetchCart(r.Context())
	h.write(w, cart, err)
}

// AddItem POST /cart/items
// quantity 省略或小於 1 時由 service 補成 1
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), req.ProductID, req.Quantity)
	h.write(w, cart, err)
}

// UpdateItem PUT /cart/items/{lineID}
// quantity <= 0 視為移除
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), chi.URLParam(r, "lineID"), req.Quantity)
	h.write(w, cart, err)
}

// RemoveItem DELETE /cart/items/{lineID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.RemoveItem(r.Context(), chi.URLParam(r, "lineID"))
	h.write(w, cart, err)
}

// ClearCart DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.ClearCart(r.Context())
	h.write(w, cart, err)
}

func (h *CartHandler) write(w http.ResponseWriter, cart model.Cart, err error) {
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.SuccessJSON(w, dto.CartDTO{
		Cart:    cart,
		Version: h.cartService.Version(),
		Busy:    h.cartService.Busy(),
	})
}
