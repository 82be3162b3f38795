package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/rs/zerolog/log"
)

type ICheckoutService interface {
	Open(ctx context.Context) StockReport
	Report() (StockReport, bool)
	Submit(ctx context.Context, notes string) (model.OrderRecord, error)
	Close()
}

// CheckoutService 結帳畫面的生命週期
// 開啟期間購物車每次變更都重新檢查庫存，較舊快照的結果直接丟棄
type CheckoutService struct {
	cart      ICartService
	validator IStockValidator
	orders    IOrderService

	mu          sync.Mutex
	report      StockReport
	hasReport   bool
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

var _ ICheckoutService = (*CheckoutService)(nil)

func NewCheckoutService(cart ICartService, validator IStockValidator, orders IOrderService) *CheckoutService {
	if cart == nil || validator == nil || orders == nil {
		panic("checkout service dependencies cannot be nil")
	}
	return &CheckoutService{cart: cart, validator: validator, orders: orders}
}

// Open 訂閱購物車變更並立即檢查一次，重複呼叫只會保留一個訂閱
func (s *CheckoutService) Open(ctx context.Context) StockReport {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
		s.unsubscribe = s.cart.Subscribe(s.onCartEvent)
	}
	s.mu.Unlock()

	version := s.cart.Version()
	return s.recompute(ctx, version, s.cart.Snapshot().Lines)
}

// Report 回傳最近一次的檢查結果，尚未檢查過時 ok 為 false
func (s *CheckoutService) Report() (StockReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, s.hasReport
}

// Submit 送出前重新檢查一次庫存，有品項可售數量為 0 時拒絕
//
// 錯誤:
//   - ErrEmptyCart
//   - ErrCheckoutBlocked
//   - PlaceOrder 的錯誤
func (s *CheckoutService) Submit(ctx context.Context, notes string) (model.OrderRecord, error) {
	version := s.cart.Version()
	cart := s.cart.Snapshot()
	if cart.IsEmpty() {
		return model.OrderRecord{}, ErrEmptyCart
	}

	report := s.recompute(ctx, version, cart.Lines)
	if report.BlocksCheckout() {
		blocking := report.Blocking()
		names := make([]string, 0, len(blocking))
		for _, w := range blocking {
			names = append(names, w.ProductName)
		}
		return model.OrderRecord{}, fmt.Errorf("%w: %v", ErrCheckoutBlocked, names)
	}

	return s.orders.PlaceOrder(ctx, notes)
}

// Close 取消訂閱並等待進行中的檢查結束
func (s *CheckoutService) Close() {
	s.mu.Lock()
	unsubscribe, cancel := s.unsubscribe, s.cancel
	s.unsubscribe, s.cancel = nil, nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.report, s.hasReport = StockReport{}, false
	s.mu.Unlock()
}

func (s *CheckoutService) onCartEvent(event CartEvent) {
	if event.Type != CartSnapshotChanged {
		return
	}

	s.mu.Lock()
	ctx := s.ctx
	if ctx == nil || s.unsubscribe == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.recompute(ctx, event.Version, event.Cart.Lines)
	}()
}

// recompute 只有比目前結果更新的購物車版本才會寫入
func (s *CheckoutService) recompute(ctx context.Context, version uint64, lines []model.CartLine) StockReport {
	report := s.validator.Validate(ctx, lines)
	report.CartVersion = version

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasReport && version < s.report.CartVersion {
		log.Debug().Uint64("version", version).Uint64("current", s.report.CartVersion).Msg("discard stale stock report")
		return report
	}
	s.report, s.hasReport = report, true
	return report
}
