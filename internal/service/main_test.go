package service

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository/memory_repo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// captureLog 暫時把全域 logger 導向 w，回傳還原函式
func captureLog(w io.Writer) func() {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(w)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	return func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}
}

var buyer = model.SessionIdentity{UserID: "buyer-1", Role: model.RoleBuyer, Token: "buyer-token"}

// newBuyerSession 回傳已登入買家的 session
func newBuyerSession(t *testing.T) *SessionService {
	t.Helper()
	s := NewSessionService(memory_repo.NewSessionRepo(), 0)
	if err := s.SignIn(context.Background(), buyer); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return s
}

type countingChime struct {
	mu    sync.Mutex
	rings int
}

func (c *countingChime) Ring() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rings++
}

func (c *countingChime) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rings
}

type fakeTracker struct {
	mu      sync.Mutex
	tracked map[string]model.OrderStatus
}

func (f *fakeTracker) Track(orderID string, status model.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tracked == nil {
		f.tracked = make(map[string]model.OrderStatus)
	}
	f.tracked[orderID] = status
}

func (f *fakeTracker) Status(orderID string) (model.OrderStatus, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.tracked[orderID]
	return s, ok
}
