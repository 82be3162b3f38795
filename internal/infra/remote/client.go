package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -source=client.go -destination=mock/commerce_client_mock.go -package=mock

// ICommerceClient 遠端商務服務
type ICommerceClient interface {
	GetCart(ctx context.Context) (model.Cart, error)
	AddCartItem(ctx context.Context, productID string, quantity int) (model.Cart, error)
	UpdateCartItem(ctx context.Context, lineID string, quantity int) (model.Cart, error)
	RemoveCartItem(ctx context.Context, lineID string) (model.Cart, error)
	ClearCart(ctx context.Context) error
	GetProduct(ctx context.Context, productID string) (model.Product, error)
	CreateOrder(ctx context.Context, notes string) (model.OrderRecord, error)
	GetOrder(ctx context.Context, orderID string) (model.OrderRecord, error)
	Ping(ctx context.Context) error
}

// TokenSource 提供目前 session 的 bearer token
type TokenSource interface {
	Token() string
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

// StaticToken is a TokenSource that always returns token.
func StaticToken(token string) TokenSource { return staticToken(token) }

// Envelope 遠端回應的共用外層
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type createOrderRequest struct {
	Notes string `json:"notes"`
}

type CommerceClient struct {
	baseURL      *url.URL
	httpClient   *http.Client
	tokens       TokenSource
	probeTimeout time.Duration
}

var _ ICommerceClient = (*CommerceClient)(nil)

type ClientOption func(*CommerceClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cc *CommerceClient) {
		cc.httpClient = c
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(cc *CommerceClient) {
		cc.httpClient.Timeout = d
	}
}

// WithProbeTimeout 連線檢查的逾時，逾時視為離線
func WithProbeTimeout(d time.Duration) ClientOption {
	return func(cc *CommerceClient) {
		cc.probeTimeout = d
	}
}

func NewCommerceClient(baseURL string, tokens TokenSource, opts ...ClientOption) (*CommerceClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid commerce api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid commerce api url %q: missing scheme or host", baseURL)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	c := &CommerceClient{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokens:       tokens,
		probeTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *CommerceClient) GetCart(ctx context.Context) (model.Cart, error) {
	var cart model.Cart
	err := c.do(ctx, "get cart", http.MethodGet, "/cart", nil, &cart)
	return cart, err
}

func (c *CommerceClient) AddCartItem(ctx context.Context, productID string, quantity int) (model.Cart, error) {
	var cart model.Cart
	err := c.do(ctx, "add cart item", http.MethodPost, "/cart/items", addItemRequest{ProductID: productID, Quantity: quantity}, &cart)
	return cart, err
}

func (c *CommerceClient) UpdateCartItem(ctx context.Context, lineID string, quantity int) (model.Cart, error) {
	var cart model.Cart
	err := c.do(ctx, "update cart item", http.MethodPut, "/cart/items/"+url.PathEscape(lineID), updateItemRequest{Quantity: quantity}, &cart)
	return cart, err
}

func (c *CommerceClient) RemoveCartItem(ctx context.Context, lineID string) (model.Cart, error) {
	var cart model.Cart
	err := c.do(ctx, "remove cart item", http.MethodDelete, "/cart/items/"+url.PathEscape(lineID), nil, &cart)
	return cart, err
}

func (c *CommerceClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, "clear cart", http.MethodDelete, "/cart", nil, nil)
}

func (c *CommerceClient) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, "get product", http.MethodGet, "/products/"+url.PathEscape(productID), nil, &p)
	return p, err
}

func (c *CommerceClient) CreateOrder(ctx context.Context, notes string) (model.OrderRecord, error) {
	var o model.OrderRecord
	err := c.do(ctx, "create order", http.MethodPost, "/orders", createOrderRequest{Notes: notes}, &o)
	return o, err
}

func (c *CommerceClient) GetOrder(ctx context.Context, orderID string) (model.OrderRecord, error) {
	var o model.OrderRecord
	err := c.do(ctx, "get order", http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &o)
	return o, err
}

// Ping 以短逾時檢查遠端是否可用
func (c *CommerceClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
}

// do 送出請求並解開 envelope
//
// 錯誤:
//   - *ConnectivityError: 請求未到達遠端
//   - *RemoteError: 遠端回傳失敗，404 時可用 errors.Is(err, ErrNotFound) 判斷
//   - ErrMalformedResponse: 回應格式錯誤
func (c *CommerceClient) do(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &ConnectivityError{Operation: op, Err: err}
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return &RemoteError{Operation: op, Status: resp.StatusCode, Message: ""}
			}
			return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
		}
	} else {
		env.Success = resp.StatusCode < http.StatusBadRequest
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		status := resp.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusUnprocessableEntity
		}
		log.Debug().
			Str("operation", op).
			Int("status", resp.StatusCode).
			Str("message", env.Message).
			Msg("remote rejected request")
		return &RemoteError{Operation: op, Status: status, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

// IsNotFound 為 errors.Is(err, ErrNotFound) 的簡寫
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
