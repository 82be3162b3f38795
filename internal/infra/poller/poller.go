// Package poller follows the status of orders placed in this session.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/lifecycle"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/rs/zerolog/log"
)

var ErrPollerRunning = errors.New("order poller is already running")

type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (model.OrderRecord, error)
}

type StatusNotifier interface {
	NotifyOrderStatus(ctx context.Context, order model.OrderRecord) error
}

// OrderPoller 定期查詢已追蹤訂單，狀態改變時發出通知
// 進入終止狀態的訂單不再追蹤
type OrderPoller struct {
	reader       OrderReader
	notifier     StatusNotifier
	interval     time.Duration
	fetchTimeout time.Duration

	mu      sync.Mutex
	tracked map[string]model.OrderStatus

	isRunning atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewOrderPoller(reader OrderReader, notifier StatusNotifier, interval time.Duration) *OrderPoller {
	if reader == nil || notifier == nil {
		panic("order poller dependencies cannot be nil")
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &OrderPoller{
		reader:       reader,
		notifier:     notifier,
		interval:     interval,
		fetchTimeout: 5 * time.Second,
		tracked:      make(map[string]model.OrderStatus),
	}
}

func (p *OrderPoller) Track(orderID string, status model.OrderStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked[orderID] = status
}

func (p *OrderPoller) Untrack(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tracked, orderID)
}

// Reset 登出時清除所有追蹤
func (p *OrderPoller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracked = make(map[string]model.OrderStatus)
}

func (p *OrderPoller) Tracked() map[string]model.OrderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]model.OrderStatus, len(p.tracked))
	for k, v := range p.tracked {
		out[k] = v
	}
	return out
}

func (p *OrderPoller) Start(ctx context.Context) error {
	if !p.isRunning.CompareAndSwap(false, true) {
		return ErrPollerRunning
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.PollOnce(ctx)
			}
		}
	}()
	log.Info().Dur("interval", p.interval).Msg("order poller started")
	return nil
}

func (p *OrderPoller) Stop(timeout time.Duration) error {
	if !p.isRunning.CompareAndSwap(true, false) {
		return nil
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("order poller stop timeout")
	}
}

// PollOnce 查詢一輪，查詢失敗的訂單下一輪再試
func (p *OrderPoller) PollOnce(ctx context.Context) {
	for orderID, known := range p.Tracked() {
		if ctx.Err() != nil {
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
		order, err := p.reader.GetOrder(fetchCtx, orderID)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("poll order failed")
			continue
		}

		if lifecycle.Ordering(order.Status) != lifecycle.Ordering(known) {
			if err := p.notifier.NotifyOrderStatus(ctx, order); err != nil {
				log.Error().Err(err).Str("order_id", orderID).Msg("notify order status failed")
			}
		}

		if lifecycle.IsTerminal(order.Status) {
			p.Untrack(orderID)
			continue
		}
		p.mu.Lock()
		if _, ok := p.tracked[orderID]; ok {
			p.tracked[orderID] = order.Status
		}
		p.mu.Unlock()
	}
}
