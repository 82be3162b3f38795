package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventTypeHeader = "event_type"

const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
	EventOrderReady         = "order_ready"
	EventStockLow           = "stock_low"
	EventStockOut           = "stock_out"
	EventSaleCompleted      = "sale_completed"
	EventUserRegistered     = "user_registered"
	EventSystemNotice       = "system_notice"
)

var ErrMissingEventType = errors.New("missing event_type header")

// NotificationSink 收到事件後要產生的通知
type NotificationSink interface {
	NotifyNewOrder(ctx context.Context, orderID string, total decimal.Decimal) error
	NotifyOrderReady(ctx context.Context, orderID, pickupCode string) error
	NotifyOrderStatus(ctx context.Context, order model.OrderRecord) error
	NotifyLowStock(ctx context.Context, productID, productName string, available int) error
	NotifyOutOfStock(ctx context.Context, productID, productName string) error
	NotifySale(ctx context.Context, orderID string, amount decimal.Decimal) error
	NotifyNewUser(ctx context.Context, userID, userName string) error
	NotifySystem(ctx context.Context, title, message, level string) error
}

type OrderEvent struct {
	OrderID         string          `json:"orderId"`
	Status          string          `json:"status"`
	PickupCode      string          `json:"pickupCode"`
	RejectionReason string          `json:"rejectionReason"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

type StockEvent struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
}

type SaleEvent struct {
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

type UserEvent struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type SystemEvent struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// NotificationProcesser 依 event_type header 將事件轉成通知
// 未知的事件類型只記 log 並略過
type NotificationProcesser struct {
	sink NotificationSink
}

var _ Processer = (*NotificationProcesser)(nil)

func NewNotificationProcesser(sink NotificationSink) *NotificationProcesser {
	return &NotificationProcesser{sink: sink}
}

// Process 逐筆處理，回傳第一個遇到的錯誤，其餘訊息仍會處理
func (p *NotificationProcesser) Process(ctx context.Context, msgs []kafka.Message) error {
	var firstErr error
	for _, msg := range msgs {
		if err := p.handle(ctx, msg); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("handle notification event failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *NotificationProcesser) handle(ctx context.Context, msg kafka.Message) error {
	eventType := headerValue(msg, EventTypeHeader)
	if eventType == "" {
		return ErrMissingEventType
	}

	switch eventType {
	case EventOrderCreated:
		var e OrderEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyNewOrder(ctx, e.OrderID, e.TotalAmount)
	case EventOrderReady:
		var e OrderEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyOrderReady(ctx, e.OrderID, e.PickupCode)
	case EventOrderStatusChanged:
		var e OrderEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyOrderStatus(ctx, model.OrderRecord{
			ID:              e.OrderID,
			Status:          model.ParseOrderStatus(e.Status),
			PickupCode:      e.PickupCode,
			RejectionReason: e.RejectionReason,
			TotalAmount:     e.TotalAmount,
		})
	case EventStockLow:
		var e StockEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyLowStock(ctx, e.ProductID, e.ProductName, e.Available)
	case EventStockOut:
		var e StockEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyOutOfStock(ctx, e.ProductID, e.ProductName)
	case EventSaleCompleted:
		var e SaleEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifySale(ctx, e.OrderID, e.Amount)
	case EventUserRegistered:
		var e UserEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifyNewUser(ctx, e.UserID, e.UserName)
	case EventSystemNotice:
		var e SystemEvent
		if err := decode(msg, &e); err != nil {
			return err
		}
		return p.sink.NotifySystem(ctx, e.Title, e.Message, e.Level)
	default:
		log.Info().Str("event_type", eventType).Msg("skip unknown notification event")
		return nil
	}
}

func decode(msg kafka.Message, v any) error {
	if err := json.Unmarshal(msg.Value, v); err != nil {
		return fmt.Errorf("decode %s event: %w", headerValue(msg, EventTypeHeader), err)
	}
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
