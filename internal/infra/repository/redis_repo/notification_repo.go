package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/cache"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
	"github.com/rs/zerolog/log"
)

type NotificationRepo struct {
	cache cache.Cache
}

var _ repository.INotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo(c cache.Cache) *NotificationRepo {
	return &NotificationRepo{cache: c}
}

func notificationKey(owner string) string {
	return fmt.Sprintf("notifications:%s", owner)
}

// Load 讀取通知清單
// 單筆資料壞掉只略過該筆，整份無法解析才回傳 ErrCorruptSlot
func (r *NotificationRepo) Load(ctx context.Context, owner string) ([]model.Notification, error) {
	raw, err := r.cache.Get(ctx, notificationKey(owner))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrSlotNotFound
		}
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: notifications:%s: %v", repository.ErrCorruptSlot, owner, err)
	}

	items := make([]model.Notification, 0, len(entries))
	for i, entry := range entries {
		var n model.Notification
		if err := json.Unmarshal(entry, &n); err != nil {
			log.Warn().Err(err).Str("owner", owner).Int("index", i).Msg("skip malformed notification")
			continue
		}
		if err := n.Validate(); err != nil {
			log.Warn().Err(err).Str("owner", owner).Int("index", i).Msg("skip invalid notification")
			continue
		}
		items = append(items, n)
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
	if err := r.cache.Set(ctx, notificationKey(owner), string(b), 0); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, owner string) error {
	if err := r.cache.Delete(ctx, notificationKey(owner)); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
