package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductInStock      ProductStatus = "in stock"
	ProductOutOfStock   ProductStatus = "out of stock"
	ProductDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductInStock, ProductOutOfStock, ProductDiscontinued:
		return true
	}
	return false
}

const (
	DefaultCategory = "Miscellaneous"
	DefaultBrand    = "Generic"
)

var hundred = decimal.NewFromInt(100)

// MoneyPlaces 与数据库金额列 decimal(20,2) 一致。
const MoneyPlaces = 2

// RoundMoney 把金额舍入到分，所有落库的金额都先经过这里。
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// Product 是可售商品。TotalSale / TotalSaleValue 只由下单流程累加。
type Product struct {
	ID             string
	ShopID         string
	Name           string
	Description    string
	Brand          string
	Category       string
	SKU            string
	Price          decimal.Decimal
	Discount       decimal.Decimal // 百分比，0-100
	ShippingCost   decimal.Decimal
	StockQuantity  int
	TotalSale      int
	TotalSaleValue decimal.Decimal
	Status         ProductStatus
	Images         []string
	ThumbnailImage string
	Weight         float64
	Dimensions     Dimensions
	Color          string
	Size           string
	Material       string
	Rating         float64
	Tags           []string
	Warranty       string
	DateAdded      time.Time
	DateModified   time.Time
}

// NewProduct 校验并补全默认值后返回新商品。
func NewProduct(p Product, now time.Time) (*Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, Invalidf("Product name is required")
	}
	if p.Price.IsNegative() {
		return nil, Invalidf("Price must not be negative")
	}
	if p.Discount.IsNegative() || p.Discount.GreaterThan(hundred) {
		return nil, Invalidf("Discount must be between 0 and 100")
	}
	if p.ShippingCost.IsNegative() {
		return nil, Invalidf("Shipping cost must not be negative")
	}
	if p.StockQuantity < 0 {
		return nil, Invalidf("Stock quantity must not be negative")
	}
	p.Price = RoundMoney(p.Price)
	p.ShippingCost = RoundMoney(p.ShippingCost)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Brand == "" {
		p.Brand = DefaultBrand
	}
	if p.Status == "" {
		p.Status = ProductInStock
	}
	if !p.Status.Valid() {
		return nil, Invalidf("Invalid product status %q", p.Status)
	}

	p.ID = uuid.NewString()
	p.TotalSale = 0
	p.TotalSaleValue = decimal.Zero
	p.DateAdded = now
	p.DateModified = now
	return &p, nil
}

// EffectivePrice 返回折后单价：price × (1 − discount/100)。
func (p *Product) EffectivePrice() decimal.Decimal {
	if !p.Discount.IsPositive() {
		return p.Price
	}
	return RoundMoney(p.Price.Sub(p.Price.Mul(p.Discount).Div(hundred)))
}

func (p *Product) OnSale() bool {
	return p.Discount.IsPositive()
}

func (p *Product) Stocked() bool {
	return p.Status == ProductInStock && p.StockQuantity > 0
}

// RecordSale 累加销量和销售额。
func (p *Product) RecordSale(quantity int, value decimal.Decimal, now time.Time) {
	p.TotalSale += quantity
	p.TotalSaleValue = p.TotalSaleValue.Add(value)
	p.DateModified = now
}

// PlatformTotals 是全平台销量汇总。
type PlatformTotals struct {
	TotalSale      int64
	TotalSaleValue decimal.Decimal
}

// SumPlatformTotals 在内存中汇总所有商品的销量和销售额。
func SumPlatformTotals(products []*Product) PlatformTotals {
	totals := PlatformTotals{TotalSaleValue: decimal.Zero}
	for _, p := range products {
		totals.TotalSale += int64(p.TotalSale)
		totals.TotalSaleValue = totals.TotalSaleValue.Add(p.TotalSaleValue)
	}
	return totals
}
