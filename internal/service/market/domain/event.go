package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderPlaced EventType = "order.placed"
	EventOrderPaid   EventType = "order.paid"
)

// OrderPlaced 在订单事务提交后发布
type OrderPlaced struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ShopIDs     []string        `json:"shopIds"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// OrderPaid 在扣款事务提交后发布
type OrderPaid struct {
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurredAt"`
}
