package service

import (
	"errors"

	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
)

var (
	// ErrNotBuyer 需要已登入的買家身分
	ErrNotBuyer = errors.New("buyer session required")
	// ErrCheckoutBlocked 有品項可售數量為 0，需先移除
	ErrCheckoutBlocked = errors.New("checkout blocked by unavailable items")
	// ErrEmptyCart 購物車沒有品項時不可結帳
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotificationNotFound 指定的通知不存在
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrInvalidIdentity 登入資料缺少使用者、角色或 token
	ErrInvalidIdentity = errors.New("invalid session identity")
	// ErrStoreClosed 購物車已關閉
	ErrStoreClosed = errors.New("cart store is closed")
)

var userMessages = map[error]string{
	ErrNotBuyer:             "Please sign in with a buyer account to use the cart.",
	ErrCheckoutBlocked:      "Some items are out of stock. Remove them to continue.",
	ErrEmptyCart:            "Your cart is empty.",
	ErrNotificationNotFound: "That notification no longer exists.",
	ErrInvalidIdentity:      "Sign-in details are incomplete.",
	ErrStoreClosed:          "Your session has ended.",
}

// UserMessage 轉成顯示給使用者的訊息，遠端錯誤交給 remote.UserMessage
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return remote.UserMessage(err)
}
