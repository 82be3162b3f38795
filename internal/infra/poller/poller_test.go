package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]model.OrderRecord
	fail   map[string]bool
}

func (f *fakeOrders) set(o model.OrderRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID string) (model.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[orderID] {
		return model.OrderRecord{}, errors.New("boom")
	}
	return f.orders[orderID], nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []model.OrderStatus
}

func (r *recordingNotifier) NotifyOrderStatus(ctx context.Context, order model.OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, order.Status)
	return nil
}

func (r *recordingNotifier) seen() []model.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.OrderStatus(nil), r.statuses...)
}

func newFixture() (*fakeOrders, *recordingNotifier, *OrderPoller) {
	orders := &fakeOrders{orders: map[string]model.OrderRecord{}, fail: map[string]bool{}}
	notifier := &recordingNotifier{}
	return orders, notifier, NewOrderPoller(orders, notifier, 10*time.Millisecond)
}

func TestPollOnceNotifiesOnChange(t *testing.T) {
	orders, notifier, p := newFixture()
	ctx := context.Background()

	orders.set(model.OrderRecord{ID: "A1", Status: model.OrderStatusCreated})
	p.Track("A1", model.OrderStatusCreated)

	p.PollOnce(ctx)
	require.Empty(t, notifier.seen())

	orders.set(model.OrderRecord{ID: "A1", Status: model.OrderStatusProcessing})
	p.PollOnce(ctx)
	require.Equal(t, []model.OrderStatus{model.OrderStatusProcessing}, notifier.seen())

	// 同階段的別名不再通知
	orders.set(model.OrderRecord{ID: "A1", Status: model.OrderStatusPendingPickup})
	p.PollOnce(ctx)
	require.Len(t, notifier.seen(), 1)

	orders.set(model.OrderRecord{ID: "A1", Status: model.OrderStatusCompleted})
	p.PollOnce(ctx)
	require.Len(t, notifier.seen(), 2)
	require.Empty(t, p.Tracked())
}

func TestPollOnceRetriesFailures(t *testing.T) {
	orders, notifier, p := newFixture()
	orders.fail["A1"] = true
	p.Track("A1", model.OrderStatusCreated)

	p.PollOnce(context.Background())
	require.Empty(t, notifier.seen())
	require.Contains(t, p.Tracked(), "A1")
}

func TestStartStop(t *testing.T) {
	orders, notifier, p := newFixture()
	orders.set(model.OrderRecord{ID: "A1", Status: model.OrderStatusReadyPickup, PickupCode: "1234"})
	p.Track("A1", model.OrderStatusCreated)

	require.NoError(t, p.Start(context.Background()))
	require.ErrorIs(t, p.Start(context.Background()), ErrPollerRunning)

	require.Eventually(t, func() bool { return len(notifier.seen()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop(time.Second))
	require.NoError(t, p.Stop(time.Second))

	p.Reset()
	require.Empty(t, p.Tracked())
}
