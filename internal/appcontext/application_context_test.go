package appcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/config"
	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote/commercetest"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type AppTestSuite struct {
	suite.Suite
	fake    *commercetest.Server
	app     *ApplicationContext
	handler http.Handler
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		LogLevel:              "disabled",
		LogFormat:             "json",
		CommerceApiUrl:        baseURL,
		CommerceApiTimeout:    2 * time.Second,
		CommerceProbeTimeout:  time.Second,
		StoreDriver:           "memory",
		CartMutationPolicy:    "serialized",
		StockCheckConcurrency: 2,
		OrderPollInterval:     time.Hour,
		RateLimitCapacity:     1000,
		RateLimitRefill:       time.Second,
	}
}

func (s *AppTestSuite) SetupTest() {
	s.fake = commercetest.NewServer("buyer-token")
	s.fake.AddProduct(model.Product{ID: "p1", Name: "Latte", Price: decimal.RequireFromString("4.50"), Stock: 5})
	s.fake.AddProduct(model.Product{ID: "p2", Name: "Mocha", Price: decimal.RequireFromString("5.00"), Stock: 1})

	app, err := NewApplicationContext(testConfig(s.fake.BaseURL()))
	s.Require().NoError(err)
	s.Require().NoError(app.Start(context.Background()))
	s.app = app
	s.handler = app.Handler()
}

func (s *AppTestSuite) TearDownTest() {
	s.NoError(s.app.Shutdown(context.Background()))
	s.fake.Close()
}

func (s *AppTestSuite) call(method, path string, body any) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *AppTestSuite) signIn() {
	code, env := s.call(http.MethodPost, "/session", dto.SignInDTO{UserID: "buyer-1", Role: "BUYER", Token: "buyer-token"})
	s.Require().Equal(http.StatusOK, code)
	s.Require().True(decodeData[dto.SessionDTO](s.T(), env).Buyer)
}

func (s *AppTestSuite) TestHealth() {
	code, env := s.call(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("ok", decodeData[dto.HealthDTO](s.T(), env).Remote)
}

func (s *AppTestSuite) TestAnonymousCannotMutateCart() {
	code, env := s.call(http.MethodGet, "/cart", nil)
	s.Equal(http.StatusOK, code)
	s.Empty(decodeData[dto.CartDTO](s.T(), env).Cart.Lines)

	code, env = s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p1", Quantity: 1})
	s.Equal(http.StatusForbidden, code)
	s.Equal(service.UserMessage(service.ErrNotBuyer), env.Message)
}

func (s *AppTestSuite) TestInvalidSignIn() {
	code, _ := s.call(http.MethodPost, "/session", dto.SignInDTO{UserID: "u1", Role: "GUEST", Token: "t"})
	s.Equal(http.StatusBadRequest, code)
	s.False(s.app.SessionService.IsBuyer())
}

func (s *AppTestSuite) TestCheckoutFlow() {
	s.signIn()

	code, env := s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p1", Quantity: 2})
	s.Require().Equal(http.StatusOK, code)
	cart := decodeData[dto.CartDTO](s.T(), env)
	s.Require().Len(cart.Cart.Lines, 1)
	s.Equal(2, cart.Cart.TotalItems)

	// 遠端拒絕的訊息原樣回傳
	code, env = s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p2", Quantity: 5})
	s.Equal(http.StatusConflict, code)
	s.Equal("Insufficient stock", env.Message)
	s.Len(s.app.CartService.Snapshot().Lines, 1)

	code, env = s.call(http.MethodGet, "/checkout/stock", nil)
	s.Require().Equal(http.StatusOK, code)
	report := decodeData[service.StockReport](s.T(), env)
	s.Empty(report.Warnings)

	code, env = s.call(http.MethodPost, "/checkout", dto.CheckoutDTO{Notes: "no sugar"})
	s.Require().Equal(http.StatusCreated, code)
	order := decodeData[model.OrderRecord](s.T(), env)
	s.Equal("order-1", order.ID)
	s.True(s.app.CartService.Snapshot().IsEmpty())
	s.Contains(s.app.OrderPoller.Tracked(), "order-1")

	code, env = s.call(http.MethodGet, "/orders/order-1", nil)
	s.Require().Equal(http.StatusOK, code)
	view := decodeData[service.OrderView](s.T(), env)
	s.Equal(model.OrderStatusCreated, view.Descriptor.Status)
	s.True(view.Descriptor.ShowEstimate)

	code, env = s.call(http.MethodGet, "/notifications/unread-count", nil)
	s.Equal(http.StatusOK, code)
	s.Equal(1, decodeData[dto.UnreadCountDTO](s.T(), env).Unread)

	// 狀態改為可取貨，輪詢後產生取貨通知
	s.fake.SetOrderStatus("order-1", model.OrderStatusReadyPickup, "1001")
	s.app.OrderPoller.PollOnce(context.Background())

	_, env = s.call(http.MethodGet, "/notifications", nil)
	list := decodeData[dto.NotificationListDTO](s.T(), env)
	s.Require().Len(list.Items, 2)
	s.Equal(2, list.Unread)
	ready, ok := list.Items[0].OrderPayload()
	s.Require().True(ok)
	s.Equal("1001", ready.PickupCode)

	code, env = s.call(http.MethodPost, fmt.Sprintf("/notifications/%d/read", list.Items[0].ID), nil)
	s.Equal(http.StatusOK, code)
	s.Equal(1, decodeData[dto.NotificationListDTO](s.T(), env).Unread)

	code, env = s.call(http.MethodDelete, fmt.Sprintf("/notifications/%d", list.Items[1].ID), nil)
	s.Equal(http.StatusOK, code)
	s.Len(decodeData[dto.NotificationListDTO](s.T(), env).Items, 1)

	code, _ = s.call(http.MethodDelete, "/notifications/42", nil)
	s.Equal(http.StatusNotFound, code)
	code, _ = s.call(http.MethodPost, "/notifications/abc/read", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *AppTestSuite) TestCheckoutEmptyCart() {
	s.signIn()
	code, env := s.call(http.MethodPost, "/checkout", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal(service.UserMessage(service.ErrEmptyCart), env.Message)
}

func (s *AppTestSuite) TestAddItemWithoutQuantityAddsOne() {
	s.signIn()

	code, env := s.call(http.MethodPost, "/cart/items", map[string]any{"productId": "p1"})
	s.Require().Equal(http.StatusOK, code, env.Message)
	cart := decodeData[dto.CartDTO](s.T(), env)
	s.Require().Len(cart.Cart.Lines, 1)
	s.Equal(1, cart.Cart.Lines[0].Quantity)
	s.Equal(1, cart.Cart.TotalItems)

	code, _ = s.call(http.MethodPost, "/cart/items", map[string]any{"quantity": 1})
	s.Equal(http.StatusBadRequest, code)
}

func (s *AppTestSuite) TestUpdateNegativeQuantityRemovesLine() {
	s.signIn()

	code, env := s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p1", Quantity: 2})
	s.Require().Equal(http.StatusOK, code)
	code, env = s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p2", Quantity: 1})
	s.Require().Equal(http.StatusOK, code)
	cart := decodeData[dto.CartDTO](s.T(), env)
	s.Require().Len(cart.Cart.Lines, 2)

	var lineID string
	for _, l := range cart.Cart.Lines {
		if l.ProductID == "p1" {
			lineID = l.ID
		}
	}
	s.Require().NotEmpty(lineID)

	code, env = s.call(http.MethodPut, "/cart/items/"+lineID, dto.UpdateItemDTO{Quantity: -1})
	s.Require().Equal(http.StatusOK, code, env.Message)
	cart = decodeData[dto.CartDTO](s.T(), env)
	s.Require().Len(cart.Cart.Lines, 1)
	s.Equal("p2", cart.Cart.Lines[0].ProductID)
	s.Equal(1, cart.Cart.TotalItems)
}

func (s *AppTestSuite) TestSignOutClearsUserState() {
	s.signIn()
	_, _ = s.call(http.MethodPost, "/cart/items", dto.AddItemDTO{ProductID: "p1", Quantity: 1})
	s.Require().NoError(s.app.NotificationService.NotifySystem(context.Background(), "Hello", "welcome", "info"))
	s.app.OrderPoller.Track("order-9", model.OrderStatusCreated)

	code, env := s.call(http.MethodDelete, "/session", nil)
	s.Equal(http.StatusOK, code)
	s.False(decodeData[dto.SessionDTO](s.T(), env).Buyer)

	s.True(s.app.CartService.Snapshot().IsEmpty())
	s.Empty(s.app.NotificationService.List())
	s.Empty(s.app.OrderPoller.Tracked())
}

func (s *AppTestSuite) TestRequestIDHeader() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("req-123", rec.Header().Get("X-Request-ID"))
}

func TestRedisStoreDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	fake := commercetest.NewServer("")
	defer fake.Close()

	cf := testConfig(fake.BaseURL())
	cf.StoreDriver = "redis"
	cf.RedisAddr = mr.Addr()

	app, err := NewApplicationContext(cf)
	require.NoError(t, err)
	require.NotNil(t, app.RedisClient)

	require.NoError(t, app.SessionService.SignIn(context.Background(), model.SessionIdentity{UserID: "u7", Role: model.RoleBuyer, Token: "tok"}))
	require.NoError(t, app.NotificationService.NotifySystem(context.Background(), "Hi", "there", "info"))

	require.True(t, mr.Exists("shopcore:session:identity"))
	require.True(t, mr.Exists("shopcore:notifications:u7"))
	require.NoError(t, app.Shutdown(context.Background()))
}

func TestInvalidStoreDriver(t *testing.T) {
	cf := testConfig("http://localhost:1")
	cf.StoreDriver = "sqlite"
	_, err := NewApplicationContext(cf)
	require.Error(t, err)
}
