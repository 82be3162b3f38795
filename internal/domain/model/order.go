package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"        // 待處理
	OrderStatusCreated       OrderStatus = "CREATED"        // 已建立
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"      // 已確認
	OrderStatusProcessing    OrderStatus = "PROCESSING"     // 備貨中
	OrderStatusPendingPickup OrderStatus = "PENDING_PICKUP" // 備貨中(等待取貨)
	OrderStatusReadyPickup   OrderStatus = "READY_PICKUP"   // 可取貨
	OrderStatusReady         OrderStatus = "READY"          // 可取貨
	OrderStatusCompleted     OrderStatus = "COMPLETED"      // 已完成
	OrderStatusCancelled     OrderStatus = "CANCELLED"      // 已取消
	OrderStatusRejected      OrderStatus = "REJECTED"       // 已拒絕
)

// ParseOrderStatus 將遠端狀態字串正規化，大小寫與前後空白不影響判斷
// 未知狀態原樣保留，由 lifecycle 負責降級
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// OrderRecord 遠端訂單，本地只讀取與分類，不擁有其狀態
type OrderRecord struct {
	ID               string          `json:"id"`
	Status           OrderStatus     `json:"status"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PickupCode       string          `json:"pickupCode,omitempty"`
	RejectionReason  string          `json:"rejectionReason,omitempty"`
	EstimatedReadyAt *time.Time      `json:"estimatedReadyAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}
