package domain

// OrderStatus 订单履约状态
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCanceled   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCanceled:
		return true
	}
	return false
}

// PaymentStatus 订单支付状态，unpaid -> paid 只允许发生一次
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit card"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash on delivery"
	PaymentBankTransfer   PaymentMethod = "bank transfer"
	PaymentCoin           PaymentMethod = "dluCoin"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPaypal, PaymentCashOnDelivery, PaymentBankTransfer, PaymentCoin:
		return true
	}
	return false
}
