package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/lifecycle"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
	"github.com/RoyceAzure/lab/shopcore/internal/pkg/ringbuf"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NotificationCapacity 保留的通知上限
const NotificationCapacity = 50

const defaultPersistTimeout = 2 * time.Second

type NotificationListener func(items []model.Notification, unread int)

type INotificationService interface {
	Add(ctx context.Context, n model.Notification) (model.Notification, error)
	Remove(ctx context.Context, id int64) error
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context)
	ClearAll(ctx context.Context)
	List() []model.Notification
	UnreadCount() int
	Subscribe(listener NotificationListener) (unsubscribe func())
	Load(ctx context.Context)
	Reset()

	NotifyNewOrder(ctx context.Context, orderID string, total decimal.Decimal) error
	NotifyOrderReady(ctx context.Context, orderID, pickupCode string) error
	NotifyOrderPlaced(ctx context.Context, order model.OrderRecord) error
	NotifyOrderStatus(ctx context.Context, order model.OrderRecord) error
	NotifyLowStock(ctx context.Context, productID, productName string, available int) error
	NotifyOutOfStock(ctx context.Context, productID, productName string) error
	NotifySale(ctx context.Context, orderID string, amount decimal.Decimal) error
	NotifyNewUser(ctx context.Context, userID, userName string) error
	NotifySystem(ctx context.Context, title, message, level string) error
}

// NotificationService 有上限的通知紀錄
// 每次變更都整份寫回槽位，啟動時讀取一次
type NotificationService struct {
	repo           repository.INotificationRepository
	identity       IdentityProvider
	chime          Chime
	lifecycle      *lifecycle.Lifecycle
	persistTimeout time.Duration
	now            func() time.Time

	mu        sync.Mutex
	items     *ringbuf.Deque[model.Notification]
	lastID    int64
	listeners []notificationSubscription
	nextSubID int
}

type notificationSubscription struct {
	id int
	fn NotificationListener
}

var _ INotificationService = (*NotificationService)(nil)

type NotificationOption func(*NotificationService)

func WithChime(c Chime) NotificationOption {
	return func(s *NotificationService) {
		s.chime = c
	}
}

func WithClock(now func() time.Time) NotificationOption {
	return func(s *NotificationService) {
		s.now = now
	}
}

func WithPersistTimeout(d time.Duration) NotificationOption {
	return func(s *NotificationService) {
		s.persistTimeout = d
	}
}

func WithLifecycle(l *lifecycle.Lifecycle) NotificationOption {
	return func(s *NotificationService) {
		s.lifecycle = l
	}
}

func NewNotificationService(repo repository.INotificationRepository, identity IdentityProvider, opts ...NotificationOption) *NotificationService {
	if repo == nil {
		panic("notification repository cannot be nil")
	}
	if identity == nil {
		panic("identity provider cannot be nil")
	}
	s := &NotificationService{
		repo:           repo,
		identity:       identity,
		chime:          NopChime{},
		persistTimeout: defaultPersistTimeout,
		now:            time.Now,
		items:          ringbuf.New[model.Notification](NotificationCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lifecycle == nil {
		s.lifecycle = lifecycle.New(nil)
	}
	return s
}

// Load 讀取目前使用者的通知槽位
// 不存在或損壞時以空清單開始，只記錄 log
func (s *NotificationService) Load(ctx context.Context) {
	owner := repository.OwnerOf(s.identity.Identity())

	ctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	items, err := s.repo.Load(ctx, owner)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrSlotNotFound):
		items = nil
	case errors.Is(err, repository.ErrCorruptSlot):
		log.Warn().Err(err).Str("owner", owner).Msg("notification slot corrupt, start empty")
		items = nil
	default:
		log.Error().Err(err).Str("owner", owner).Msg("load notifications failed, start empty")
		items = nil
	}

	s.mu.Lock()
	s.items.Replace(items)
	s.lastID = 0
	for _, n := range s.items.Slice() {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}
	items = s.items.Slice()
	s.mu.Unlock()

	log.Debug().Str("owner", owner).Int("count", len(items)).Msg("notifications loaded")
	s.notify(items)
}

// Reset 清除畫面上的通知，不動槽位，登出時使用
func (s *NotificationService) Reset() {
	s.mu.Lock()
	s.items.Clear()
	s.mu.Unlock()
	s.notify(nil)
}

// Add 新增一筆通知，超過上限時丟棄最舊的
//
// 錯誤:
//   - model.ErrUnknownCategory
//   - model.ErrPayloadMismatch: payload 類型與類別不符
func (s *NotificationService) Add(ctx context.Context, n model.Notification) (model.Notification, error) {
	if err := n.Validate(); err != nil {
		return model.Notification{}, err
	}

	s.mu.Lock()
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}
	n.ID = s.nextIDLocked()
	if evicted, ok := s.items.PushFront(n); ok {
		log.Debug().Int64("id", evicted.ID).Msg("notification evicted")
	}
	items := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(items)
	return n, nil
}

func (s *NotificationService) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotificationNotFound, id)
	}
	s.items.RemoveAt(idx)
	items := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(items)
	return nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotificationNotFound, id)
	}
	n := s.items.At(idx)
	if n.Read {
		s.mu.Unlock()
		return nil
	}
	n.Read = true
	s.items.Set(idx, n)
	items := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(items)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	for i := 0; i < s.items.Len(); i++ {
		n := s.items.At(i)
		n.Read = true
		s.items.Set(i, n)
	}
	items := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(items)
}

func (s *NotificationService) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.items.Clear()
	items := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(items)
}

// List 新到舊
func (s *NotificationService) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Slice()
}

// UnreadCount 每次從清單計算，不另外保存
func (s *NotificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countUnread(s.items.Slice())
}

func (s *NotificationService) Subscribe(listener NotificationListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners = append(s.listeners, notificationSubscription{id: id, fn: listener})

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

func (s *NotificationService) NotifyNewOrder(ctx context.Context, orderID string, total decimal.Decimal) error {
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryOrder,
		Title:    "New order",
		Message:  fmt.Sprintf("Order #%s was placed (%s).", orderID, total.StringFixed(2)),
		Link:     orderLink(orderID),
		Priority: true,
		Payload:  model.OrderPayload{OrderID: orderID, Status: model.OrderStatusCreated, TotalAmount: total},
	})
	if err == nil {
		s.chime.Ring()
	}
	return err
}

func (s *NotificationService) NotifyOrderReady(ctx context.Context, orderID, pickupCode string) error {
	msg := fmt.Sprintf("Order #%s is ready for pickup.", orderID)
	if pickupCode != "" {
		msg = fmt.Sprintf("Order #%s is ready for pickup. Your pickup code is %s.", orderID, pickupCode)
	}
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryOrder,
		Title:    "Order ready",
		Message:  msg,
		Link:     orderLink(orderID),
		Priority: true,
		Payload:  model.OrderPayload{OrderID: orderID, Status: model.OrderStatusReadyPickup, PickupCode: pickupCode},
	})
	if err == nil {
		s.chime.Ring()
	}
	return err
}

// NotifyOrderPlaced 買家下單成功
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, order model.OrderRecord) error {
	msg := fmt.Sprintf("Order #%s was placed. Total %s.", order.ID, order.TotalAmount.StringFixed(2))
	if order.PickupCode != "" {
		msg += fmt.Sprintf(" Pickup code %s.", order.PickupCode)
	}
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryOrder,
		Title:    "Order placed",
		Message:  msg,
		Link:     orderLink(order.ID),
		Payload: model.OrderPayload{
			OrderID:     order.ID,
			Status:      order.Status,
			PickupCode:  order.PickupCode,
			TotalAmount: order.TotalAmount,
		},
	})
	return err
}

// NotifyOrderStatus 訂單狀態改變
// 到可取貨階段改走 NotifyOrderReady，取貨碼與拒絕原因只在對應狀態帶入
func (s *NotificationService) NotifyOrderStatus(ctx context.Context, order model.OrderRecord) error {
	d := s.lifecycle.Describe(order, s.now())
	if lifecycle.IsReadyForPickup(d.Status) {
		return s.NotifyOrderReady(ctx, order.ID, order.PickupCode)
	}

	payload := model.OrderPayload{
		OrderID:         order.ID,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		TotalAmount:     order.TotalAmount,
	}

	var title, msg string
	switch {
	case d.AbnormalView != nil:
		title = d.AbnormalView.Title
		msg = fmt.Sprintf("Order #%s: %s", order.ID, d.AbnormalView.Message)
		if d.RejectionReason != "" {
			msg = fmt.Sprintf("Order #%s: %s", order.ID, d.RejectionReason)
		}
	default:
		title = "Order update"
		label := string(d.Status)
		for _, step := range d.Steps {
			if step.State == lifecycle.StepCurrent {
				label = step.Label
			}
		}
		msg = fmt.Sprintf("Order #%s: %s", order.ID, label)
	}

	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryOrder,
		Title:    title,
		Message:  msg,
		Link:     orderLink(order.ID),
		Payload:  payload,
	})
	return err
}

func (s *NotificationService) NotifyLowStock(ctx context.Context, productID, productName string, available int) error {
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryStock,
		Title:    "Low stock",
		Message:  fmt.Sprintf("%s has only %d left.", productName, available),
		Link:     productLink(productID),
		Payload:  model.StockPayload{ProductID: productID, ProductName: productName, Available: available},
	})
	return err
}

func (s *NotificationService) NotifyOutOfStock(ctx context.Context, productID, productName string) error {
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryStock,
		Title:    "Out of stock",
		Message:  fmt.Sprintf("%s is out of stock.", productName),
		Link:     productLink(productID),
		Payload:  model.StockPayload{ProductID: productID, ProductName: productName, Available: 0},
	})
	return err
}

func (s *NotificationService) NotifySale(ctx context.Context, orderID string, amount decimal.Decimal) error {
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategorySale,
		Title:    "Sale completed",
		Message:  fmt.Sprintf("Order #%s completed for %s.", orderID, amount.StringFixed(2)),
		Link:     orderLink(orderID),
		Payload:  model.SalePayload{OrderID: orderID, Amount: amount},
	})
	return err
}

func (s *NotificationService) NotifyNewUser(ctx context.Context, userID, userName string) error {
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategoryUser,
		Title:    "New user",
		Message:  fmt.Sprintf("%s just signed up.", userName),
		Link:     "/users/" + userID,
		Payload:  model.UserPayload{UserID: userID, UserName: userName},
	})
	return err
}

func (s *NotificationService) NotifySystem(ctx context.Context, title, message, level string) error {
	if level == "" {
		level = "info"
	}
	_, err := s.Add(ctx, model.Notification{
		Category: model.CategorySystem,
		Title:    title,
		Message:  message,
		Payload:  model.SystemPayload{Level: level},
	})
	return err
}

// nextIDLocked 以建立時間 (ms) 為 id，同一毫秒內遞增
func (s *NotificationService) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *NotificationService) indexLocked(id int64) int {
	return s.items.Index(func(n model.Notification) bool { return n.ID == id })
}

// persistLocked 寫回槽位，失敗只記 log，記憶體內的狀態仍以變更後為準
func (s *NotificationService) persistLocked(ctx context.Context) []model.Notification {
	items := s.items.Slice()
	owner := repository.OwnerOf(s.identity.Identity())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, owner, items); err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("persist notifications failed")
	}
	return items
}

func (s *NotificationService) notify(items []model.Notification) {
	s.mu.Lock()
	listeners := make([]NotificationListener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	unread := countUnread(items)
	for _, l := range listeners {
		l(items, unread)
	}
}

func countUnread(items []model.Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}

func orderLink(orderID string) string {
	return "/orders/" + orderID
}

func productLink(productID string) string {
	return "/products/" + productID
}
