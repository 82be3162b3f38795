package redis_repo

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/cache"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testPrefix = "shopcore"

type RedisRepoTestSuite struct {
	suite.Suite
	mr            *miniredis.Miniredis
	notifications *NotificationRepo
	sessions      *SessionRepo
}

func TestRedisRepoSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	c := cache.NewRedisCache(cache.GetRedisClient(s.mr.Addr()), testPrefix)
	s.notifications = NewNotificationRepo(c)
	s.sessions = NewSessionRepo(c)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	require.NoError(s.T(), cache.CloseRedisClient(s.mr.Addr()))
}

func (s *RedisRepoTestSuite) TestNotificationSaveLoad() {
	ctx := context.Background()
	items := []model.Notification{
		{ID: 2, Category: model.CategoryStock, Timestamp: time.Now().UTC(), Title: "Low stock", Payload: model.StockPayload{ProductID: "p1", Available: 2}},
		{ID: 1, Category: model.CategorySystem, Timestamp: time.Now().UTC(), Title: "Hello", Read: true},
	}

	require.NoError(s.T(), s.notifications.Save(ctx, "u1", items))
	require.True(s.T(), s.mr.Exists("shopcore:notifications:u1"))

	got, err := s.notifications.Load(ctx, "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)
	require.Equal(s.T(), int64(2), got[0].ID)
	p, ok := got[0].StockPayload()
	require.True(s.T(), ok)
	require.Equal(s.T(), 2, p.Available)
	require.True(s.T(), got[1].Read)
}

func (s *RedisRepoTestSuite) TestNotificationMissingSlot() {
	_, err := s.notifications.Load(context.Background(), "nobody")
	require.ErrorIs(s.T(), err, repository.ErrSlotNotFound)
}

func (s *RedisRepoTestSuite) TestNotificationCorruptSlot() {
	require.NoError(s.T(), s.mr.Set("shopcore:notifications:u1", "{not json"))
	_, err := s.notifications.Load(context.Background(), "u1")
	require.ErrorIs(s.T(), err, repository.ErrCorruptSlot)
}

func (s *RedisRepoTestSuite) TestNotificationSkipsBadEntries() {
	require.NoError(s.T(), s.mr.Set("shopcore:notifications:u1",
		`[{"id":1,"type":"promo","title":"x"},{"id":2,"type":"system","title":"ok"}]`))
	got, err := s.notifications.Load(context.Background(), "u1")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	require.Equal(s.T(), int64(2), got[0].ID)
}

func (s *RedisRepoTestSuite) TestNotificationDelete() {
	ctx := context.Background()
	require.NoError(s.T(), s.notifications.Save(ctx, "u1", nil))
	require.NoError(s.T(), s.notifications.Delete(ctx, "u1"))
	_, err := s.notifications.Load(ctx, "u1")
	require.ErrorIs(s.T(), err, repository.ErrSlotNotFound)
}

func (s *RedisRepoTestSuite) TestSessionRoundTrip() {
	ctx := context.Background()
	_, err := s.sessions.Load(ctx)
	require.ErrorIs(s.T(), err, repository.ErrSlotNotFound)

	identity := model.SessionIdentity{UserID: "u1", Role: model.RoleBuyer, Token: "tok"}
	require.NoError(s.T(), s.sessions.Save(ctx, identity))
	require.Equal(s.T(), "u1", s.mr.HGet("shopcore:session:identity", "user_id"))

	got, err := s.sessions.Load(ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), identity, got)

	require.NoError(s.T(), s.sessions.Clear(ctx))
	_, err = s.sessions.Load(ctx)
	require.ErrorIs(s.T(), err, repository.ErrSlotNotFound)
}

func (s *RedisRepoTestSuite) TestSessionCorrupt() {
	s.mr.HSet("shopcore:session:identity", "user_id", "u1", "role", "WIZARD")
	got, err := s.sessions.Load(context.Background())
	require.ErrorIs(s.T(), err, repository.ErrCorruptSlot)
	require.False(s.T(), got.IsAuthenticated())
}
