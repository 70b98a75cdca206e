package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultShippingMethod = "Standard shipping"

type ShippingAddress struct {
	FullName     string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	PhoneNumber  string
}

// Validate 检查除 AddressLine2 外的所有必填字段。
func (a ShippingAddress) Validate() error {
	required := []struct {
		name, value string
	}{
		{"fullName", a.FullName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
		{"phoneNumber", a.PhoneNumber},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Invalidf("Shipping address is missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// OrderItem 订单行，Price 为下单时的成交单价。
type OrderItem struct {
	ProductID string
	Name      string
	Brand     string
	Quantity  int
	Price     decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return RoundMoney(i.Price.Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// OrderDraft 是创建订单的输入。
type OrderDraft struct {
	CustomerID      string
	Items           []OrderItem
	PaymentMethod   PaymentMethod
	ShippingAddress *ShippingAddress
	ShippingMethod  string
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Notes           string
}

// Validate 校验必填字段和数值范围。
func (d *OrderDraft) Validate() error {
	if d.CustomerID == "" || len(d.Items) == 0 || d.PaymentMethod == "" || d.ShippingAddress == nil {
		return Invalidf("Missing required fields")
	}
	if !d.PaymentMethod.Valid() {
		return Invalidf("Unsupported payment method %q", d.PaymentMethod)
	}
	if err := d.ShippingAddress.Validate(); err != nil {
		return err
	}
	for idx, item := range d.Items {
		if item.ProductID == "" {
			return Invalidf("products[%d]: productID is required", idx)
		}
		if item.Quantity <= 0 {
			return Invalidf("products[%d]: quantity must be a positive integer", idx)
		}
		if item.Price.IsNegative() {
			return Invalidf("products[%d]: price must not be negative", idx)
		}
	}
	if d.ShippingCost.IsNegative() {
		return Invalidf("Shipping cost must not be negative")
	}
	if d.Discount.IsNegative() {
		return Invalidf("Discount must not be negative")
	}
	return nil
}

// RoundMoney 把调用方传入的单价、运费和折扣舍入到分。
func (d *OrderDraft) RoundMoney() {
	for i := range d.Items {
		d.Items[i].Price = RoundMoney(d.Items[i].Price)
	}
	d.ShippingCost = RoundMoney(d.ShippingCost)
	d.Discount = RoundMoney(d.Discount)
}

// Order 是订单聚合根
type Order struct {
	ID              string
	CustomerID      string
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	OrderStatus     OrderStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	ShippingAddress ShippingAddress
	ShippingMethod  string
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal // 调用方折扣 + 相关店铺平台折扣
	Notes           string
	DateOrdered     time.Time
	DatePaid        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder 用报价结果创建一个待支付订单。
func NewOrder(d *OrderDraft, quote Quote, now time.Time) *Order {
	method := d.ShippingMethod
	if method == "" {
		method = DefaultShippingMethod
	}
	items := make([]OrderItem, len(d.Items))
	copy(items, d.Items)
	return &Order{
		ID:              uuid.NewString(),
		CustomerID:      d.CustomerID,
		Items:           items,
		TotalAmount:     quote.Total,
		OrderStatus:     OrderPending,
		PaymentStatus:   PaymentUnpaid,
		PaymentMethod:   d.PaymentMethod,
		ShippingAddress: *d.ShippingAddress,
		ShippingMethod:  method,
		ShippingCost:    quote.ShippingCost,
		Discount:        quote.Discount,
		Notes:           d.Notes,
		DateOrdered:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// MarkPaid 将订单置为已支付
func (o *Order) MarkPaid(now time.Time) error {
	if o.PaymentStatus != PaymentUnpaid {
		return ErrOrderAlreadyPaid
	}
	o.PaymentStatus = PaymentPaid
	o.DatePaid = &now
	o.UpdatedAt = now
	return nil
}

// HasBrand 订单是否包含该品牌的商品。
func (o *Order) HasBrand(brand string) bool {
	for _, item := range o.Items {
		if item.Brand == brand {
			return true
		}
	}
	return false
}

// RegularCustomer 是某品牌的常客统计。
type RegularCustomer struct {
	CustomerID  string
	Name        string
	Email       string
	OrdersCount int
}
