package model

import "github.com/shopspring/decimal"

// Product 遠端商品資料，庫存相關欄位由遠端維護
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ReservedStock int             `json:"reservedStock"`
}

// AvailableStock 可售庫存 = 總庫存 - 已被其他購物車/訂單保留的數量，最小為 0
func (p Product) AvailableStock() int {
	available := p.Stock - p.ReservedStock
	if available < 0 {
		return 0
	}
	return available
}

// StockWarning is an advisory annotation on one cart line whose requested
// quantity exceeds what the remote inventory can currently supply.
type StockWarning struct {
	LineID            string `json:"lineId"`
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableQuantity int    `json:"availableStock"`
	TotalStock        int    `json:"stock"`
	ReservedStock     int    `json:"reservedStock"`
}

// Blocking 可售數量為 0 時必須移除該品項才能結帳
func (w StockWarning) Blocking() bool {
	return w.AvailableQuantity == 0
}
