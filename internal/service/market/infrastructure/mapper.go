package infrastructure

import (
	"storefront/internal/service/market/domain"
)

func ToDomainUser(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Coin:         m.Coin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func FromDomainUser(u *domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Coin:         u.Coin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToDomainProduct(m *ProductModel) *domain.Product {
	if m == nil {
		return nil
	}
	p := &domain.Product{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Brand:          m.Brand,
		Category:       m.Category,
		SKU:            m.SKU,
		Price:          m.Price,
		Discount:       m.Discount,
		ShippingCost:   m.ShippingCost,
		StockQuantity:  m.StockQuantity,
		TotalSale:      m.TotalSale,
		TotalSaleValue: m.TotalSaleValue,
		Status:         domain.ProductStatus(m.Status),
		Images:         m.Images,
		ThumbnailImage: m.ThumbnailImage,
		Weight:         m.Weight,
		Dimensions:     domain.Dimensions(m.Dimensions),
		Color:          m.Color,
		Size:           m.Size,
		Material:       m.Material,
		Rating:         m.Rating,
		Tags:           m.Tags,
		Warranty:       m.Warranty,
		DateAdded:      m.DateAdded,
		DateModified:   m.DateModified,
	}
	if m.ShopID != nil {
		p.ShopID = *m.ShopID
	}
	return p
}

func FromDomainProduct(p *domain.Product) *ProductModel {
	m := &ProductModel{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Brand:          p.Brand,
		Category:       p.Category,
		SKU:            p.SKU,
		Price:          p.Price,
		Discount:       p.Discount,
		ShippingCost:   p.ShippingCost,
		StockQuantity:  p.StockQuantity,
		TotalSale:      p.TotalSale,
		TotalSaleValue: p.TotalSaleValue,
		Status:         string(p.Status),
		Images:         p.Images,
		ThumbnailImage: p.ThumbnailImage,
		Weight:         p.Weight,
		Dimensions:     DimensionsModel(p.Dimensions),
		Color:          p.Color,
		Size:           p.Size,
		Material:       p.Material,
		Rating:         p.Rating,
		Tags:           p.Tags,
		Warranty:       p.Warranty,
		DateAdded:      p.DateAdded,
		DateModified:   p.DateModified,
	}
	if p.ShopID != "" {
		shopID := p.ShopID
		m.ShopID = &shopID
	}
	return m
}

func ToDomainShop(m *ShopModel) *domain.Shop {
	if m == nil {
		return nil
	}
	s := &domain.Shop{
		ID:                       m.ID,
		Name:                     m.Name,
		OwnerID:                  m.OwnerID,
		Description:              m.Description,
		Location:                 domain.Location(m.Location),
		PlatformDiscount:         m.PlatformDiscount,
		PlatformShippingDiscount: m.PlatformShippingDiscount,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
	for _, p := range m.Products {
		s.ProductIDs = append(s.ProductIDs, p.ID)
	}
	for _, c := range m.Customers {
		s.Customers = append(s.Customers, domain.ShopCustomer{
			CustomerID:  c.CustomerID,
			Name:        c.Name,
			OrdersCount: c.OrdersCount,
		})
	}
	return s
}

// FromDomainShop 只转换 shops 表本身的列，关联表由仓储单独维护。
func FromDomainShop(s *domain.Shop) *ShopModel {
	return &ShopModel{
		ID:                       s.ID,
		Name:                     s.Name,
		OwnerID:                  s.OwnerID,
		Description:              s.Description,
		Location:                 LocationModel(s.Location),
		PlatformDiscount:         s.PlatformDiscount,
		PlatformShippingDiscount: s.PlatformShippingDiscount,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

func ToDomainCart(m *CartModel) *domain.Cart {
	if m == nil {
		return nil
	}
	c := &domain.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		CartTotal: m.CartTotal,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, it := range m.Items {
		c.Items = append(c.Items, domain.CartItem{
			ProductID:      it.ProductID,
			Name:           it.Name,
			Brand:          it.Brand,
			Price:          it.Price,
			Quantity:       it.Quantity,
			TotalPrice:     it.TotalPrice,
			ThumbnailImage: it.ThumbnailImage,
		})
	}
	return c
}

func FromDomainCart(c *domain.Cart) *CartModel {
	m := &CartModel{
		ID:        c.ID,
		UserID:    c.UserID,
		CartTotal: c.CartTotal,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i, it := range c.Items {
		m.Items = append(m.Items, CartItemModel{
			CartID:         c.ID,
			Position:       i,
			ProductID:      it.ProductID,
			Name:           it.Name,
			Brand:          it.Brand,
			Price:          it.Price,
			Quantity:       it.Quantity,
			TotalPrice:     it.TotalPrice,
			ThumbnailImage: it.ThumbnailImage,
		})
	}
	return m
}

func ToDomainOrder(m *OrderModel) *domain.Order {
	if m == nil {
		return nil
	}
	o := &domain.Order{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		TotalAmount:     m.TotalAmount,
		OrderStatus:     domain.OrderStatus(m.OrderStatus),
		PaymentStatus:   domain.PaymentStatus(m.PaymentStatus),
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		ShippingAddress: domain.ShippingAddress(m.ShippingAddress),
		ShippingMethod:  m.ShippingMethod,
		ShippingCost:    m.ShippingCost,
		Discount:        m.Discount,
		Notes:           m.Notes,
		DateOrdered:     m.DateOrdered,
		DatePaid:        m.DatePaid,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Brand:     it.Brand,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return o
}

func FromDomainOrder(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		OrderStatus:     string(o.OrderStatus),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		ShippingAddress: ShippingAddressModel(o.ShippingAddress),
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
		Discount:        o.Discount,
		Notes:           o.Notes,
		DateOrdered:     o.DateOrdered,
		DatePaid:        o.DatePaid,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			OrderID:   o.ID,
			Position:  i,
			ProductID: it.ProductID,
			Name:      it.Name,
			Brand:     it.Brand,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return m
}
