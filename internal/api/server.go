package api

import "github.com/RoyceAzure/lab/shopcore/internal/api/handler"

type Server struct {
	SessionHandler      *handler.SessionHandler
	CartHandler         *handler.CartHandler
	CheckoutHandler     *handler.CheckoutHandler
	OrderHandler        *handler.OrderHandler
	NotificationHandler *handler.NotificationHandler
	HealthHandler       *handler.HealthHandler
}

func NewServer(
	sessionHandler *handler.SessionHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	notificationHandler *handler.NotificationHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	return &Server{
		SessionHandler:      sessionHandler,
		CartHandler:         cartHandler,
		CheckoutHandler:     checkoutHandler,
		OrderHandler:        orderHandler,
		NotificationHandler: notificationHandler,
		HealthHandler:       healthHandler,
	}
}
