package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem 是购物车中的一行，Price 为加入时的折后单价。
type CartItem struct {
	ProductID      string
	Name           string
	Brand          string
	Price          decimal.Decimal
	Quantity       int
	TotalPrice     decimal.Decimal
	ThumbnailImage string
}

// Cart 每个用户最多一个，首次加购时创建。
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CartTotal decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CartTotal: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem 加购：同一商品只累加数量，否则追加新行。
func (c *Cart) AddItem(p *Product, quantity int, now time.Time) error {
	if quantity <= 0 {
		return Invalidf("Quantity must be a positive integer")
	}

	price := p.EffectivePrice()
	found := false
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID != p.ID {
			continue
		}
		item.Quantity += quantity
		item.Price = price
		item.TotalPrice = RoundMoney(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		found = true
		break
	}
	if !found {
		c.Items = append(c.Items, CartItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Brand:          p.Brand,
			Price:          price,
			Quantity:       quantity,
			TotalPrice:     RoundMoney(price.Mul(decimal.NewFromInt(int64(quantity)))),
			ThumbnailImage: p.ThumbnailImage,
		})
	}

	c.recalculate(now)
	return nil
}

// RemoveItem 删除一行并重新计算总价。
func (c *Cart) RemoveItem(productID string, now time.Time) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recalculate(now)
			return nil
		}
	}
	return ErrCartItemNotFound
}

// ItemCount 返回行数（不同商品的数量）。
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

func (c *Cart) recalculate(now time.Time) {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	c.CartTotal = total
	c.UpdatedAt = now
}
