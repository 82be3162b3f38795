// Package commercetest runs an in-memory commerce service for tests.
package commercetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	products    map[string]model.Product
	lines       []model.CartLine
	orders      map[string]model.OrderRecord
	failing     map[string]bool
	nextLine    int
	nextOrder   int
	cartDeletes int
	delay       time.Duration
}

// NewServer 建立假服務，token 為空時不檢查 Authorization
func NewServer(token string) *Server {
	s := &Server{
		token:    token,
		products: make(map[string]model.Product),
		orders:   make(map[string]model.OrderRecord),
		failing:  make(map[string]bool),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		delay := s.delay
		s.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		writeOK(w, nil)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/cart", s.getCart)
		r.Delete("/cart", s.clearCart)
		r.Post("/cart/items", s.addItem)
		r.Put("/cart/items/{lineID}", s.updateItem)
		r.Delete("/cart/items/{lineID}", s.removeItem)
		r.Get("/products/{productID}", s.getProduct)
		r.Post("/orders", s.createOrder)
		r.Get("/orders/{orderID}", s.getOrder)
	})
	return r
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeFail(w, http.StatusUnauthorized, "Please sign in again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AddProduct 新增或覆蓋商品
func (s *Server) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// FailProduct makes GET /products/{id} answer 500.
func (s *Server) FailProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[id] = true
}

func (s *Server) SetOrderStatus(id string, status model.OrderStatus, pickupCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	o.Status = status
	if pickupCode != "" {
		o.PickupCode = pickupCode
	}
	s.orders[id] = o
}

func (s *Server) SetHealthDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// CartDeletes counts DELETE /cart calls.
func (s *Server) CartDeletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartDeletes
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		writeFail(w, http.StatusNotFound, "Cart not found")
		return
	}
	writeOK(w, s.snapshot())
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartDeletes++
	if len(s.lines) == 0 {
		writeFail(w, http.StatusNotFound, "Cart not found")
		return
	}
	s.lines = nil
	writeOK(w, nil)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeFail(w, http.StatusBadRequest, "Invalid quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		writeFail(w, http.StatusNotFound, "Product not found")
		return
	}

	for i, l := range s.lines {
		if l.ProductID == p.ID {
			if l.Quantity+req.Quantity > p.AvailableStock() {
				writeFail(w, http.StatusConflict, "Insufficient stock")
				return
			}
			s.lines[i].Quantity += req.Quantity
			writeOK(w, s.snapshot())
			return
		}
	}
	if req.Quantity > p.AvailableStock() {
		writeFail(w, http.StatusConflict, "Insufficient stock")
		return
	}

	s.nextLine++
	s.lines = append(s.lines, model.CartLine{
		ID:          fmt.Sprintf("line-%d", s.nextLine),
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    req.Quantity,
	})
	writeOK(w, s.snapshot())
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeFail(w, http.StatusBadRequest, "Invalid quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lineID := chi.URLParam(r, "lineID")
	for i, l := range s.lines {
		if l.ID == lineID {
			s.lines[i].Quantity = req.Quantity
			writeOK(w, s.snapshot())
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Cart item not found")
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lineID := chi.URLParam(r, "lineID")
	for i, l := range s.lines {
		if l.ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			writeOK(w, s.snapshot())
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Cart item not found")
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "productID")
	if s.failing[id] {
		writeFail(w, http.StatusInternalServerError, "Inventory unavailable")
		return
	}
	p, ok := s.products[id]
	if !ok {
		writeFail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeOK(w, p)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		writeFail(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	total := s.snapshot().TotalAmount
	s.nextOrder++
	o := model.OrderRecord{
		ID:          fmt.Sprintf("order-%d", s.nextOrder),
		Status:      model.OrderStatusCreated,
		TotalAmount: total,
		PickupCode:  fmt.Sprintf("%04d", 1000+s.nextOrder),
		CreatedAt:   time.Now().UTC(),
	}
	s.orders[o.ID] = o
	s.lines = nil
	writeOK(w, o)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[chi.URLParam(r, "orderID")]
	if !ok {
		writeFail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeOK(w, o)
}

// snapshot 需持有 mu
func (s *Server) snapshot() model.Cart {
	cart := model.Cart{Lines: make([]model.CartLine, 0, len(s.lines)), TotalAmount: decimal.Zero}
	for _, l := range s.lines {
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		cart.Lines = append(cart.Lines, l)
		cart.TotalItems += l.Quantity
		cart.TotalAmount = cart.TotalAmount.Add(l.LineTotal)
	}
	return cart
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "data": data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BaseURL 去掉結尾斜線方便組路徑
func (s *Server) BaseURL() string {
	return strings.TrimRight(s.Server.URL, "/")
}
