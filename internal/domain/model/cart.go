package model

import (
	"github.com/shopspring/decimal"
)

// CartLine 購物車中單一商品的保留數量
// 價格與小計皆以遠端回傳為準，本地不計算
type CartLine struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"subtotal"`
}

// Cart 購物車快照，每次變更後整份取代，不做合併
type Cart struct {
	Lines       []CartLine      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func EmptyCart() Cart {
	return Cart{
		Lines:       []CartLine{},
		TotalItems:  0,
		TotalAmount: decimal.Zero,
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line 依 line id 取得購物車品項
func (c Cart) Line(lineID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Consistent 遠端給的 TotalItems 與品項數量加總相符，且沒有 quantity < 1 的品項
func (c Cart) Consistent() bool {
	count := 0
	for _, l := range c.Lines {
		if l.Quantity < 1 {
			return false
		}
		count += l.Quantity
	}
	return count == c.TotalItems
}

// Normalize 整理遠端快照
// quantity < 1 的品項不可能存在，直接丟棄
// TotalItems 由同一份快照的品項推導，確保與品項列表一致
// TotalAmount 沿用遠端金額，本地不重算
func (c Cart) Normalize() Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	count := 0
	for _, l := range c.Lines {
		if l.Quantity < 1 {
			continue
		}
		lines = append(lines, l)
		count += l.Quantity
	}
	return Cart{
		Lines:       lines,
		TotalItems:  count,
		TotalAmount: c.TotalAmount,
	}
}

// Clone returns a copy whose line slice can be handed to subscribers.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	c.Lines = lines
	return c
}
