package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCategory = errors.New("unknown notification category")
	ErrPayloadMismatch = errors.New("notification payload does not match category")
)

type Category string

const (
	CategoryOrder  Category = "order"
	CategoryStock  Category = "stock"
	CategorySale   Category = "sale"
	CategoryUser   Category = "user"
	CategorySystem Category = "system"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryOrder, CategoryStock, CategorySale, CategoryUser, CategorySystem:
		return true
	default:
		return false
	}
}

// Payload 依類別區分的附加資料
// 每個類別只有自己的欄位，例如取貨碼只存在於 OrderPayload
type Payload interface {
	Kind() Category
	isPayload()
}

type OrderPayload struct {
	OrderID         string          `json:"orderId"`
	Status          OrderStatus     `json:"status,omitempty"`
	PickupCode      string          `json:"pickupCode,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

type StockPayload struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
}

type SalePayload struct {
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
}

type UserPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type SystemPayload struct {
	Level string `json:"level"`
}

func (OrderPayload) Kind() Category  { return CategoryOrder }
func (StockPayload) Kind() Category  { return CategoryStock }
func (SalePayload) Kind() Category   { return CategorySale }
func (UserPayload) Kind() Category   { return CategoryUser }
func (SystemPayload) Kind() Category { return CategorySystem }

func (OrderPayload) isPayload()  {}
func (StockPayload) isPayload()  {}
func (SalePayload) isPayload()   {}
func (UserPayload) isPayload()   {}
func (SystemPayload) isPayload() {}

// Notification 使用者可見的提醒
type Notification struct {
	ID        int64
	Category  Category
	Timestamp time.Time
	Read      bool
	Title     string
	Message   string
	Link      string
	Priority  bool
	Payload   Payload
}

// Validate checks the category and that the payload, when present, belongs to it.
func (n Notification) Validate() error {
	if !n.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, n.Category)
	}
	if n.Payload != nil && n.Payload.Kind() != n.Category {
		return fmt.Errorf("%w: %s payload on %s notification", ErrPayloadMismatch, n.Payload.Kind(), n.Category)
	}
	return nil
}

// OrderPayload 取出訂單類附加資料
func (n Notification) OrderPayload() (OrderPayload, bool) {
	p, ok := n.Payload.(OrderPayload)
	return p, ok
}

func (n Notification) StockPayload() (StockPayload, bool) {
	p, ok := n.Payload.(StockPayload)
	return p, ok
}

type notificationJSON struct {
	ID        int64           `json:"id"`
	Category  Category        `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Read      bool            `json:"read"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Link      string          `json:"link,omitempty"`
	Priority  bool            `json:"priority,omitempty"`
	Payload   json.RawMessage `json:"data,omitempty"`
}

func (n Notification) MarshalJSON() ([]byte, error) {
	raw := notificationJSON{
		ID:        n.ID,
		Category:  n.Category,
		Timestamp: n.Timestamp,
		Read:      n.Read,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Priority:  n.Priority,
	}
	if n.Payload != nil {
		b, err := json.Marshal(n.Payload)
		if err != nil {
			return nil, err
		}
		raw.Payload = b
	}
	return json.Marshal(raw)
}

// UnmarshalJSON 依 type 欄位決定 data 要解析成哪一種 payload
func (n *Notification) UnmarshalJSON(b []byte) error {
	var raw notificationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !raw.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, raw.Category)
	}

	*n = Notification{
		ID:        raw.ID,
		Category:  raw.Category,
		Timestamp: raw.Timestamp,
		Read:      raw.Read,
		Title:     raw.Title,
		Message:   raw.Message,
		Link:      raw.Link,
		Priority:  raw.Priority,
	}

	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return nil
	}

	payload, err := decodePayload(raw.Category, raw.Payload)
	if err != nil {
		return err
	}
	n.Payload = payload
	return nil
}

func decodePayload(category Category, data []byte) (Payload, error) {
	switch category {
	case CategoryOrder:
		var p OrderPayload
		err := json.Unmarshal(data, &p)
		return p, err
	case CategoryStock:
		var p StockPayload
		err := json.Unmarshal(data, &p)
		return p, err
	case CategorySale:
		var p SalePayload
		err := json.Unmarshal(data, &p)
		return p, err
	case CategoryUser:
		var p UserPayload
		err := json.Unmarshal(data, &p)
		return p, err
	case CategorySystem:
		var p SystemPayload
		err := json.Unmarshal(data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}
