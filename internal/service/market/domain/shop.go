package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Location struct {
	Address string
	City    string
	Country string
}

// ShopCustomer 是店铺内某个顾客的忠诚度记录。
type ShopCustomer struct {
	CustomerID  string
	Name        string
	OrdersCount int
}

// Shop 是卖家店铺。店铺名即其商品的 brand。
type Shop struct {
	ID                       string
	Name                     string
	OwnerID                  string
	Description              string
	Location                 Location
	ProductIDs               []string
	Customers                []ShopCustomer
	PlatformDiscount         decimal.Decimal
	PlatformShippingDiscount decimal.Decimal
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// NewShop 为 owner 创建店铺。
func NewShop(ownerID, name, description string, location Location, now time.Time) (*Shop, error) {
	name = strings.TrimSpace(name)
	if ownerID == "" {
		return nil, Invalidf("User ID is required")
	}
	if name == "" {
		return nil, Invalidf("Shop name is required")
	}
	return &Shop{
		ID:                       uuid.NewString(),
		Name:                     name,
		OwnerID:                  ownerID,
		Description:              description,
		Location:                 location,
		PlatformDiscount:         decimal.Zero,
		PlatformShippingDiscount: decimal.Zero,
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// ShopPatch 描述一次店铺编辑，nil 字段保持不变。
type ShopPatch struct {
	Name                     *string
	Description              *string
	Location                 *Location
	PlatformDiscount         *decimal.Decimal
	PlatformShippingDiscount *decimal.Decimal
}

// Apply 应用编辑。
func (s *Shop) Apply(patch ShopPatch, now time.Time) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Invalidf("Shop name must not be empty")
		}
		s.Name = name
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Location != nil {
		s.Location = *patch.Location
	}
	if patch.PlatformDiscount != nil {
		if patch.PlatformDiscount.IsNegative() {
			return Invalidf("Platform discount must not be negative")
		}
		s.PlatformDiscount = RoundMoney(*patch.PlatformDiscount)
	}
	if patch.PlatformShippingDiscount != nil {
		if patch.PlatformShippingDiscount.IsNegative() {
			return Invalidf("Platform shipping discount must not be negative")
		}
		s.PlatformShippingDiscount = RoundMoney(*patch.PlatformShippingDiscount)
	}
	s.UpdatedAt = now
	return nil
}

// PlatformDiscountTotal 是该店铺对每个订单贡献的平台折扣。
func (s *Shop) PlatformDiscountTotal() decimal.Decimal {
	return s.PlatformDiscount.Add(s.PlatformShippingDiscount)
}

// RecordPurchase 顾客在本店下单一次：已有记录 +1，否则新建计数为 1。
func (s *Shop) RecordPurchase(customerID, name string) {
	for i := range s.Customers {
		if s.Customers[i].CustomerID == customerID {
			s.Customers[i].OrdersCount++
			if name != "" {
				s.Customers[i].Name = name
			}
			return
		}
	}
	s.Customers = append(s.Customers, ShopCustomer{CustomerID: customerID, Name: name, OrdersCount: 1})
}

// AttachProduct 把商品挂到店铺下，重复挂载无副作用。
func (s *Shop) AttachProduct(productID string) {
	for _, id := range s.ProductIDs {
		if id == productID {
			return
		}
	}
	s.ProductIDs = append(s.ProductIDs, productID)
}

func (s *Shop) Customer(customerID string) (ShopCustomer, bool) {
	for _, c := range s.Customers {
		if c.CustomerID == customerID {
			return c, true
		}
	}
	return ShopCustomer{}, false
}
