// Package memory_repo keeps the persistence slots in process memory.
package memory_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
)

// NotificationRepo 存放序列化後的內容，行為與 redis 版本一致
type NotificationRepo struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ repository.INotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{slots: make(map[string][]byte)}
}

func (r *NotificationRepo) Load(ctx context.Context, owner string) ([]model.Notification, error) {
	r.mu.RLock()
	b, ok := r.slots[owner]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrSlotNotFound
	}

	var items []model.Notification
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorruptSlot, err)
	}
	return items, nil
}

func (r *NotificationRepo) Save(ctx context.Context, owner string, items []model.Notification) error {
	if items == nil {
		items = []model.Notification{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	r.mu.Lock()
	r.slots[owner] = b
	r.mu.Unlock()
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, owner string) error {
	r.mu.Lock()
	delete(r.slots, owner)
	r.mu.Unlock()
	return nil
}

// SetRaw 直接寫入原始內容，用來模擬損壞的槽位
func (r *NotificationRepo) SetRaw(owner string, raw []byte) {
	r.mu.Lock()
	r.slots[owner] = raw
	r.mu.Unlock()
}

type SessionRepo struct {
	mu       sync.RWMutex
	identity *model.SessionIdentity
}

var _ repository.ISessionRepository = (*SessionRepo)(nil)

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

func (r *SessionRepo) Load(ctx context.Context) (model.SessionIdentity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.identity == nil {
		return model.AnonymousIdentity(), repository.ErrSlotNotFound
	}
	return *r.identity, nil
}

func (r *SessionRepo) Save(ctx context.Context, identity model.SessionIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = &identity
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = nil
	return nil
}
