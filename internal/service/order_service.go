package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/lifecycle"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/rs/zerolog/log"
)

// OrderTracker 追蹤已下單訂單的狀態變化
type OrderTracker interface {
	Track(orderID string, status model.OrderStatus)
}

// OrderView 訂單與其顯示描述
type OrderView struct {
	Order      model.OrderRecord    `json:"order"`
	Descriptor lifecycle.Descriptor `json:"descriptor"`
}

type IOrderService interface {
	PlaceOrder(ctx context.Context, notes string) (model.OrderRecord, error)
	GetOrder(ctx context.Context, orderID string) (OrderView, error)
}

type OrderService struct {
	client        remote.ICommerceClient
	identity      IdentityProvider
	cart          ICartService
	notifications INotificationService
	lifecycle     *lifecycle.Lifecycle
	tracker       OrderTracker
	now           func() time.Time
}

var _ IOrderService = (*OrderService)(nil)

func NewOrderService(
	client remote.ICommerceClient,
	identity IdentityProvider,
	cart ICartService,
	notifications INotificationService,
	lc *lifecycle.Lifecycle,
) *OrderService {
	if client == nil || identity == nil || cart == nil || notifications == nil {
		panic("order service dependencies cannot be nil")
	}
	if lc == nil {
		lc = lifecycle.New(nil)
	}
	return &OrderService{
		client:        client,
		identity:      identity,
		cart:          cart,
		notifications: notifications,
		lifecycle:     lc,
		now:           time.Now,
	}
}

// SetTracker 設定訂單追蹤，poller 建立後才注入
func (s *OrderService) SetTracker(t OrderTracker) {
	s.tracker = t
}

// PlaceOrder 建立訂單
// 成功後本地重置購物車 (遠端已在同一交易清空)，並發出下單通知
//
// 錯誤:
//   - ErrNotBuyer
//   - *remote.RemoteError / *remote.ConnectivityError
func (s *OrderService) PlaceOrder(ctx context.Context, notes string) (model.OrderRecord, error) {
	if !s.identity.Identity().IsBuyer() {
		return model.OrderRecord{}, ErrNotBuyer
	}

	order, err := s.client.CreateOrder(ctx, notes)
	if err != nil {
		log.Warn().Err(err).Msg("create order failed")
		return model.OrderRecord{}, fmt.Errorf("place order: %w", err)
	}

	s.cart.ResetCart()

	if err := s.notifications.NotifyOrderPlaced(ctx, order); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("order placed notification failed")
	}
	if s.tracker != nil && !lifecycle.IsTerminal(order.Status) {
		s.tracker.Track(order.ID, order.Status)
	}

	log.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Msg("order placed")
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (OrderView, error) {
	order, err := s.client.GetOrder(ctx, orderID)
	if err != nil {
		return OrderView{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return OrderView{Order: order, Descriptor: s.lifecycle.Describe(order, s.now())}, nil
}
