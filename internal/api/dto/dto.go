package dto

import "github.com/RoyceAzure/lab/shopcore/internal/domain/model"

type SignInDTO struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

type SessionDTO struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
	Buyer  bool       `json:"buyer"`
}

type AddItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemDTO struct {
	Quantity int `json:"quantity"`
}

type CartDTO struct {
	Cart    model.Cart `json:"cart"`
	Version uint64     `json:"version"`
	Busy    bool       `json:"busy"`
}

type CheckoutDTO struct {
	Notes string `json:"notes"`
}

type NotificationListDTO struct {
	Items  []model.Notification `json:"items"`
	Unread int                  `json:"unread"`
}

type UnreadCountDTO struct {
	Unread int `json:"unread"`
}

type HealthDTO struct {
	Remote string `json:"remote"`
}
