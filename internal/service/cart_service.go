package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// MutationPolicy 購物車同時有多個變更請求時的處理方式
type MutationPolicy string

const (
	// PolicyLastWriteWins 不排隊，最後回來的快照覆蓋前面的
	PolicyLastWriteWins MutationPolicy = "last_write_wins"
	// PolicySerialized 同一時間只送出一個變更請求，其餘等待
	PolicySerialized MutationPolicy = "serialized"
)

// ParseMutationPolicy 空字串與 "lww" 都視為 last_write_wins
func ParseMutationPolicy(s string) (MutationPolicy, error) {
	switch MutationPolicy(s) {
	case "", "lww", PolicyLastWriteWins:
		return PolicyLastWriteWins, nil
	case PolicySerialized:
		return PolicySerialized, nil
	default:
		return "", fmt.Errorf("unknown cart mutation policy %q", s)
	}
}

type CartEventType int

const (
	// CartSnapshotChanged 快照已被取代
	CartSnapshotChanged CartEventType = iota
	// CartBusyChanged busy 狀態改變
	CartBusyChanged
	// CartSurfaceRequested 加入商品成功，畫面應開啟購物車
	CartSurfaceRequested
)

func (t CartEventType) String() string {
	switch t {
	case CartSnapshotChanged:
		return "snapshot_changed"
	case CartBusyChanged:
		return "busy_changed"
	case CartSurfaceRequested:
		return "surface_requested"
	default:
		return "unknown"
	}
}

type CartEvent struct {
	Type    CartEventType
	Cart    model.Cart
	Version uint64
	Busy    bool
}

type CartListener func(CartEvent)

type ICartService interface {
	FetchCart(ctx context.Context) (model.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int) (model.Cart, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int) (model.Cart, error)
	RemoveItem(ctx context.Context, lineID string) (model.Cart, error)
	ClearCart(ctx context.Context) (model.Cart, error)
	ResetCart()
	Snapshot() model.Cart
	Version() uint64
	Busy() bool
	Subscribe(listener CartListener) (unsubscribe func())
	Close()
}

// CartService 購物車的本地權威視圖
// 所有變更都經過遠端服務，成功後以遠端回傳的快照整份取代
type CartService struct {
	client   remote.ICommerceClient
	identity IdentityProvider
	policy   MutationPolicy
	sem      *semaphore.Weighted

	mu        sync.Mutex
	cart      model.Cart
	version   uint64
	inflight  int
	closed    bool
	listeners []cartSubscription
	nextID    int
}

type cartSubscription struct {
	id int
	fn CartListener
}

var _ ICartService = (*CartService)(nil)

func NewCartService(client remote.ICommerceClient, identity IdentityProvider, policy MutationPolicy) *CartService {
	if client == nil {
		panic("commerce client cannot be nil")
	}
	if identity == nil {
		panic("identity provider cannot be nil")
	}
	if policy == "" {
		policy = PolicyLastWriteWins
	}
	return &CartService{
		client:   client,
		identity: identity,
		policy:   policy,
		sem:      semaphore.NewWeighted(1),
		cart:     model.EmptyCart(),
	}
}

// FetchCart 取得目前買家的購物車
// 非買家不呼叫遠端，直接持有空購物車；遠端 not found 視為空購物車
func (s *CartService) FetchCart(ctx context.Context) (model.Cart, error) {
	if err := s.checkOpen(); err != nil {
		return model.EmptyCart(), err
	}
	if !s.identity.Identity().IsBuyer() {
		return s.apply(model.EmptyCart()), nil
	}

	cart, err := s.client.GetCart(ctx)
	if err != nil {
		if remote.IsNotFound(err) {
			return s.apply(model.EmptyCart()), nil
		}
		log.Warn().Err(err).Msg("fetch cart failed")
		return s.Snapshot(), fmt.Errorf("fetch cart: %w", err)
	}
	return s.apply(cart), nil
}

// AddItem quantity < 1 時以 1 計
func (s *CartService) AddItem(ctx context.Context, productID string, quantity int) (model.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	cart, err := s.mutate(ctx, "add item", func(ctx context.Context) (model.Cart, error) {
		return s.client.AddCartItem(ctx, productID, quantity)
	})
	if err != nil {
		return cart, err
	}
	s.emit(CartEvent{Type: CartSurfaceRequested, Cart: cart, Version: s.Version(), Busy: s.Busy()})
	return cart, nil
}

// UpdateQuantity quantity < 1 等同 RemoveItem
func (s *CartService) UpdateQuantity(ctx context.Context, lineID string, quantity int) (model.Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, lineID)
	}
	return s.mutate(ctx, "update quantity", func(ctx context.Context) (model.Cart, error) {
		return s.client.UpdateCartItem(ctx, lineID, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, lineID string) (model.Cart, error) {
	return s.mutate(ctx, "remove item", func(ctx context.Context) (model.Cart, error) {
		return s.client.RemoveCartItem(ctx, lineID)
	})
}

// ClearCart 可重複呼叫，遠端 not found 視為成功
func (s *CartService) ClearCart(ctx context.Context) (model.Cart, error) {
	return s.mutate(ctx, "clear cart", func(ctx context.Context) (model.Cart, error) {
		if err := s.client.ClearCart(ctx); err != nil && !remote.IsNotFound(err) {
			return model.Cart{}, err
		}
		return model.EmptyCart(), nil
	})
}

// ResetCart 下單成功後的本地重置，不呼叫遠端
func (s *CartService) ResetCart() {
	s.apply(model.EmptyCart())
}

func (s *CartService) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Version 每次快照被取代就加一
func (s *CartService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *CartService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Subscribe listener 在變更的 goroutine 中同步呼叫，不可阻塞
func (s *CartService) Subscribe(listener CartListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, cartSubscription{id: id, fn: listener})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Close 關閉購物車，之後的變更都回傳 ErrStoreClosed
func (s *CartService) Close() {
	s.mu.Lock()
	s.closed = true
	s.cart = model.EmptyCart()
	s.listeners = nil
	s.mu.Unlock()
}

func (s *CartService) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// mutate 執行一次遠端變更
// 成功時整份取代快照，失敗時保留原快照並回傳錯誤
func (s *CartService) mutate(ctx context.Context, op string, call func(ctx context.Context) (model.Cart, error)) (model.Cart, error) {
	if err := s.checkOpen(); err != nil {
		return model.EmptyCart(), err
	}
	if !s.identity.Identity().IsBuyer() {
		return s.Snapshot(), ErrNotBuyer
	}

	if s.policy == PolicySerialized {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return s.Snapshot(), fmt.Errorf("%s: %w", op, err)
		}
		defer s.sem.Release(1)
	}

	s.setBusy(1)
	defer s.setBusy(-1)

	cart, err := call(ctx)
	if err != nil {
		log.Warn().Err(err).Str("operation", op).Msg("cart mutation failed")
		return s.Snapshot(), fmt.Errorf("%s: %w", op, err)
	}
	return s.apply(cart), nil
}

func (s *CartService) apply(cart model.Cart) model.Cart {
	if !cart.Consistent() {
		log.Warn().
			Int("remote_total_items", cart.TotalItems).
			Int("lines", len(cart.Lines)).
			Msg("cart snapshot inconsistent, total items recomputed from lines")
	}
	cart = cart.Normalize()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.EmptyCart()
	}
	s.cart = cart
	s.version++
	event := CartEvent{Type: CartSnapshotChanged, Cart: cart.Clone(), Version: s.version, Busy: s.inflight > 0}
	s.mu.Unlock()

	s.emit(event)
	return cart.Clone()
}

func (s *CartService) setBusy(delta int) {
	s.mu.Lock()
	before := s.inflight > 0
	s.inflight += delta
	after := s.inflight > 0
	event := CartEvent{Type: CartBusyChanged, Cart: s.cart.Clone(), Version: s.version, Busy: after}
	s.mu.Unlock()

	if before != after {
		s.emit(event)
	}
}

func (s *CartService) emit(event CartEvent) {
	s.mu.Lock()
	listeners := make([]CartListener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}

// IsRemoteRejection 判斷錯誤是否為遠端明確拒絕
func IsRemoteRejection(err error) bool {
	var remoteErr *remote.RemoteError
	return errors.As(err, &remoteErr)
}
