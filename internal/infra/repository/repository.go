// Package repository defines the local persistence slots.
package repository

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
)

var (
	// ErrSlotNotFound 槽位尚未寫入過
	ErrSlotNotFound = errors.New("persistence slot not found")
	// ErrCorruptSlot 槽位內容無法解析
	ErrCorruptSlot = errors.New("persistence slot is corrupt")
)

// AnonymousOwner 未登入時通知槽位的擁有者
const AnonymousOwner = "anonymous"

// INotificationRepository 通知清單整份讀寫，不做增量更新
type INotificationRepository interface {
	// Load 錯誤:
	//   - ErrSlotNotFound
	//   - ErrCorruptSlot
	Load(ctx context.Context, owner string) ([]model.Notification, error)
	Save(ctx context.Context, owner string, items []model.Notification) error
	Delete(ctx context.Context, owner string) error
}

type ISessionRepository interface {
	// Load 錯誤:
	//   - ErrSlotNotFound
	//   - ErrCorruptSlot
	Load(ctx context.Context) (model.SessionIdentity, error)
	Save(ctx context.Context, identity model.SessionIdentity) error
	Clear(ctx context.Context) error
}

// OwnerOf returns the notification slot owner for a session.
func OwnerOf(identity model.SessionIdentity) string {
	if identity.UserID == "" {
		return AnonymousOwner
	}
	return identity.UserID
}
