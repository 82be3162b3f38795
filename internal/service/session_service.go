package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
	"github.com/rs/zerolog/log"
)

// IdentityProvider 提供目前的登入身分
type IdentityProvider interface {
	Identity() model.SessionIdentity
}

type ISessionService interface {
	IdentityProvider
	Load(ctx context.Context) model.SessionIdentity
	SignIn(ctx context.Context, identity model.SessionIdentity) error
	SignOut(ctx context.Context)
	IsBuyer() bool
	Token() string
	OnSignIn(hook func(ctx context.Context, identity model.SessionIdentity))
	OnSignOut(hook func(ctx context.Context))
}

const defaultSessionLoadTimeout = 2 * time.Second

type SessionService struct {
	repo        repository.ISessionRepository
	loadTimeout time.Duration

	mu        sync.RWMutex
	identity  model.SessionIdentity
	onSignIn  []func(ctx context.Context, identity model.SessionIdentity)
	onSignOut []func(ctx context.Context)
}

var _ ISessionService = (*SessionService)(nil)

func NewSessionService(repo repository.ISessionRepository, loadTimeout time.Duration) *SessionService {
	if repo == nil {
		panic("session repository cannot be nil")
	}
	if loadTimeout <= 0 {
		loadTimeout = defaultSessionLoadTimeout
	}
	return &SessionService{
		repo:        repo,
		loadTimeout: loadTimeout,
		identity:    model.AnonymousIdentity(),
	}
}

// Load 啟動時讀取一次保存的身分
// 讀取逾時、不存在或格式錯誤都視為未登入，不會失敗
func (s *SessionService) Load(ctx context.Context) model.SessionIdentity {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	identity, err := s.repo.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrSlotNotFound):
		identity = model.AnonymousIdentity()
	default:
		log.Warn().Err(err).Msg("session slot unreadable, continue as anonymous")
		identity = model.AnonymousIdentity()
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
	return identity
}

// SignIn 保存身分並通知訂閱者
//
// 錯誤:
//   - ErrInvalidIdentity: 缺少使用者、token 或角色不正確
func (s *SessionService) SignIn(ctx context.Context, identity model.SessionIdentity) error {
	if identity.UserID == "" || identity.Token == "" || !model.IsValidRole(string(identity.Role)) {
		return fmt.Errorf("%w: user=%q role=%q", ErrInvalidIdentity, identity.UserID, identity.Role)
	}

	s.mu.Lock()
	s.identity = identity
	hooks := append([]func(context.Context, model.SessionIdentity){}, s.onSignIn...)
	s.mu.Unlock()

	// 槽位只是快取，寫入失敗不影響登入
	if err := s.repo.Save(ctx, identity); err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("persist session failed")
	}

	log.Info().Str("user_id", identity.UserID).Str("role", string(identity.Role)).Msg("session signed in")
	for _, hook := range hooks {
		hook(ctx, identity)
	}
	return nil
}

// SignOut 清除身分，並執行登出 hook (重置購物車、清除通知畫面)
func (s *SessionService) SignOut(ctx context.Context) {
	s.mu.Lock()
	previous := s.identity
	s.identity = model.AnonymousIdentity()
	hooks := append([]func(context.Context){}, s.onSignOut...)
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("clear session slot failed")
	}

	log.Info().Str("user_id", previous.UserID).Msg("session signed out")
	for _, hook := range hooks {
		hook(ctx)
	}
}

func (s *SessionService) Identity() model.SessionIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *SessionService) IsBuyer() bool {
	return s.Identity().IsBuyer()
}

// Token 供 remote client 使用
func (s *SessionService) Token() string {
	return s.Identity().Token
}

func (s *SessionService) OnSignIn(hook func(ctx context.Context, identity model.SessionIdentity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignIn = append(s.onSignIn, hook)
}

func (s *SessionService) OnSignOut(hook func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignOut = append(s.onSignOut, hook)
}
