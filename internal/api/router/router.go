package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api"
	m "github.com/RoyceAzure/lab/shopcore/internal/api/middleware"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter limiter 為 nil 時不限流
func SetupRouter(server *api.Server, identity service.IdentityProvider, limiter ratelimit.ILimiter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger, identity))
	r.Use(m.RecoverMiddleware)
	if limiter != nil {
		r.Use(ratelimit.NewRateLimitMiddleware(limiter, nil))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", server.HealthHandler.Health)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", server.SessionHandler.Me)
			r.Post("/", server.SessionHandler.SignIn)
			r.Delete("/", server.SessionHandler.SignOut)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Delete("/", server.CartHandler.ClearCart)
			r.Post("/items", server.CartHandler.AddItem)
			r.Put("/items/{lineID}", server.CartHandler.UpdateItem)
			r.Delete("/items/{lineID}", server.CartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/stock", server.CheckoutHandler.StockReport)
			r.Post("/", server.CheckoutHandler.Submit)
		})

		r.Get("/orders/{orderID}", server.OrderHandler.GetOrder)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", server.NotificationHandler.List)
			r.Delete("/", server.NotificationHandler.ClearAll)
			r.Get("/unread-count", server.NotificationHandler.UnreadCount)
			r.Post("/read-all", server.NotificationHandler.MarkAllRead)
			r.Post("/{id}/read", server.NotificationHandler.MarkRead)
			r.Delete("/{id}", server.NotificationHandler.Remove)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	return r
}

// PrintRoutes 列出所有路由，啟動時除錯用
func PrintRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route")
		return nil
	})
}
