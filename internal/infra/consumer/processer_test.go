package consumer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	items []string
}

var _ NotificationSink = (*recordingSink)(nil)

func newRecordingSink() *recordingSink {
	return &recordingSink{}
}

func (s *recordingSink) record(format string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, fmt.Sprintf(format, args...))
	return nil
}

func (s *recordingSink) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...)
}

func (s *recordingSink) NotifyNewOrder(_ context.Context, orderID string, total decimal.Decimal) error {
	return s.record("new:%s:%s", orderID, total.StringFixed(2))
}

func (s *recordingSink) NotifyOrderReady(_ context.Context, orderID, pickupCode string) error {
	return s.record("ready:%s:%s", orderID, pickupCode)
}

func (s *recordingSink) NotifyOrderStatus(_ context.Context, order model.OrderRecord) error {
	return s.record("status:%s:%s", order.ID, order.Status)
}

func (s *recordingSink) NotifyLowStock(_ context.Context, productID, _ string, available int) error {
	return s.record("low:%s:%d", productID, available)
}

func (s *recordingSink) NotifyOutOfStock(_ context.Context, productID, _ string) error {
	return s.record("out:%s", productID)
}

func (s *recordingSink) NotifySale(_ context.Context, orderID string, amount decimal.Decimal) error {
	return s.record("sale:%s:%s", orderID, amount.StringFixed(2))
}

func (s *recordingSink) NotifyNewUser(_ context.Context, userID, _ string) error {
	return s.record("user:%s", userID)
}

func (s *recordingSink) NotifySystem(_ context.Context, title, _, level string) error {
	return s.record("system:%s:%s", title, level)
}

func TestNotificationProcesserDispatch(t *testing.T) {
	sink := newRecordingSink()
	p := NewNotificationProcesser(sink)

	msgs := []kafka.Message{
		eventMsg(EventOrderCreated, 1, `{"orderId":"A1","totalAmount":"12.5"}`),
		eventMsg(EventOrderStatusChanged, 2, `{"orderId":"A1","status":" processing "}`),
		eventMsg(EventOrderReady, 3, `{"orderId":"A1","pickupCode":"4821"}`),
		eventMsg(EventStockLow, 4, `{"productId":"p1","productName":"Latte","available":2}`),
		eventMsg(EventStockOut, 5, `{"productId":"p2","productName":"Mocha"}`),
		eventMsg(EventSaleCompleted, 6, `{"orderId":"A2","amount":"8"}`),
		eventMsg(EventUserRegistered, 7, `{"userId":"u9","userName":"Ann"}`),
		eventMsg(EventSystemNotice, 8, `{"title":"Maintenance","message":"tonight","level":"warning"}`),
	}

	require.NoError(t, p.Process(context.Background(), msgs))
	require.Equal(t, []string{
		"new:A1:12.50",
		"status:A1:PROCESSING",
		"ready:A1:4821",
		"low:p1:2",
		"out:p2",
		"sale:A2:8.00",
		"user:u9",
		"system:Maintenance:warning",
	}, sink.calls())
}

func TestNotificationProcesserSkipsUnknownType(t *testing.T) {
	sink := newRecordingSink()
	p := NewNotificationProcesser(sink)

	err := p.Process(context.Background(), []kafka.Message{
		eventMsg("coupon_issued", 1, `{}`),
	})
	require.NoError(t, err)
	require.Empty(t, sink.calls())
}

func TestNotificationProcesserErrors(t *testing.T) {
	sink := newRecordingSink()
	p := NewNotificationProcesser(sink)

	err := p.Process(context.Background(), []kafka.Message{
		{Offset: 1, Value: []byte(`{}`)},
		eventMsg(EventStockOut, 2, `{"productId":"p3"}`),
	})
	require.ErrorIs(t, err, ErrMissingEventType)
	// 前一筆失敗不影響後面的訊息
	require.Equal(t, []string{"out:p3"}, sink.calls())

	err = p.Process(context.Background(), []kafka.Message{eventMsg(EventOrderReady, 3, `[`)})
	require.Error(t, err)
	require.Contains(t, err.Error(), EventOrderReady)
}
