package redis_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/cache"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
)

const sessionKey = "session:identity"

const (
	fieldUserID = "user_id"
	fieldRole   = "role"
	fieldToken  = "token"
)

// SessionRepo 以 hash 保存最小化的登入身分
type SessionRepo struct {
	cache cache.Cache
}

var _ repository.ISessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(c cache.Cache) *SessionRepo {
	return &SessionRepo{cache: c}
}

func (r *SessionRepo) Load(ctx context.Context) (model.SessionIdentity, error) {
	fields, err := r.cache.HGetAll(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return model.AnonymousIdentity(), repository.ErrSlotNotFound
		}
		return model.AnonymousIdentity(), fmt.Errorf("load session: %w", err)
	}

	identity := model.SessionIdentity{
		UserID: fields[fieldUserID],
		Role:   model.Role(fields[fieldRole]),
		Token:  fields[fieldToken],
	}
	if identity.UserID == "" || !model.IsValidRole(string(identity.Role)) {
		return model.AnonymousIdentity(), fmt.Errorf("%w: %s", repository.ErrCorruptSlot, sessionKey)
	}
	return identity, nil
}

func (r *SessionRepo) Save(ctx context.Context, identity model.SessionIdentity) error {
	err := r.cache.HSet(ctx, sessionKey, map[string]any{
		fieldUserID: identity.UserID,
		fieldRole:   string(identity.Role),
		fieldToken:  identity.Token,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.cache.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
