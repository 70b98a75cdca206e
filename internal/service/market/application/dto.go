package application

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/service/market/domain"
)

// ---- 请求 ----

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditUserRequest 只允许修改密码和角色。
type EditUserRequest struct {
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type DimensionsDTO struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type AddProductRequest struct {
	ShopID         string          `json:"shopId,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	Brand          string          `json:"brand"`
	SKU            string          `json:"sku"`
	StockQuantity  int             `json:"stockQuantity"`
	Images         []string        `json:"images"`
	ThumbnailImage string          `json:"thumbnailImage"`
	Weight         float64         `json:"weight"`
	Dimensions     DimensionsDTO   `json:"dimensions"`
	Color          string          `json:"color"`
	Size           string          `json:"size"`
	Material       string          `json:"material"`
	Rating         float64         `json:"rating"`
	Status         string          `json:"status"`
	Discount       decimal.Decimal `json:"discount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Tags           []string        `json:"tags"`
	Warranty       string          `json:"warranty"`
}

func (r *AddProductRequest) toDomain() domain.Product {
	return domain.Product{
		ShopID:         r.ShopID,
		Name:           r.Name,
		Description:    r.Description,
		Brand:          r.Brand,
		Category:       r.Category,
		SKU:            r.SKU,
		Price:          r.Price,
		Discount:       r.Discount,
		ShippingCost:   r.ShippingCost,
		StockQuantity:  r.StockQuantity,
		Status:         domain.ProductStatus(r.Status),
		Images:         r.Images,
		ThumbnailImage: r.ThumbnailImage,
		Weight:         r.Weight,
		Dimensions:     domain.Dimensions(r.Dimensions),
		Color:          r.Color,
		Size:           r.Size,
		Material:       r.Material,
		Rating:         r.Rating,
		Tags:           r.Tags,
		Warranty:       r.Warranty,
	}
}

type LocationDTO struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type CreateShopRequest struct {
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    LocationDTO `json:"location"`
}

type EditShopRequest struct {
	Name                     *string          `json:"name,omitempty"`
	Description              *string          `json:"description,omitempty"`
	Location                 *LocationDTO     `json:"location,omitempty"`
	PlatformDiscount         *decimal.Decimal `json:"platformDiscount,omitempty"`
	PlatformShippingDiscount *decimal.Decimal `json:"platformShippingDiscount,omitempty"`
}

func (r *EditShopRequest) toPatch() domain.ShopPatch {
	patch := domain.ShopPatch{
		Name:                     r.Name,
		Description:              r.Description,
		PlatformDiscount:         r.PlatformDiscount,
		PlatformShippingDiscount: r.PlatformShippingDiscount,
	}
	if r.Location != nil {
		loc := domain.Location(*r.Location)
		patch.Location = &loc
	}
	return patch
}

type AddCartItemRequest struct {
	UserID    string `json:"userID"`
	ProductID string `json:"productID"`
	Quantity  int    `json:"quantity"`
}

type OrderItemDTO struct {
	ProductID string          `json:"productID"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type ShippingAddressDTO struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phoneNumber"`
}

type CreateOrderRequest struct {
	CustomerID      string              `json:"customerID"`
	Products        []OrderItemDTO      `json:"products"`
	PaymentMethod   string              `json:"paymentMethod"`
	ShippingAddress *ShippingAddressDTO `json:"shippingAddress"`
	ShippingMethod  string              `json:"shippingMethod"`
	ShippingCost    decimal.Decimal     `json:"shippingCost"`
	Discount        decimal.Decimal     `json:"discount"`
	Notes           string              `json:"notes,omitempty"`
}

func (r *CreateOrderRequest) toDraft() *domain.OrderDraft {
	d := &domain.OrderDraft{
		CustomerID:     r.CustomerID,
		PaymentMethod:  domain.PaymentMethod(r.PaymentMethod),
		ShippingMethod: r.ShippingMethod,
		ShippingCost:   r.ShippingCost,
		Discount:       r.Discount,
		Notes:          r.Notes,
	}
	for _, p := range r.Products {
		d.Items = append(d.Items, domain.OrderItem(p))
	}
	if r.ShippingAddress != nil {
		addr := domain.ShippingAddress(*r.ShippingAddress)
		d.ShippingAddress = &addr
	}
	return d
}

type PayOrderRequest struct {
	CustomerID string `json:"customerID"`
	OrderID    string `json:"orderID"`
}

// ---- 响应 ----

type UserView struct {
	ID        string          `json:"_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Coin      decimal.Decimal `json:"dluCoin"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toUserView(u *domain.User) *UserView {
	return &UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Coin:      u.Coin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *UserView `json:"user"`
}

type ProductView struct {
	ID             string          `json:"_id"`
	ShopID         string          `json:"shopId,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Brand          string          `json:"brand"`
	Category       string          `json:"category"`
	SKU            string          `json:"sku,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	StockQuantity  int             `json:"stockQuantity"`
	TotalSale      int             `json:"totalSale"`
	TotalSaleValue decimal.Decimal `json:"totalSaleValue"`
	Status         string          `json:"status"`
	Images         []string        `json:"images"`
	ThumbnailImage string          `json:"thumbnailImage"`
	Weight         float64         `json:"weight"`
	Dimensions     DimensionsDTO   `json:"dimensions"`
	Color          string          `json:"color,omitempty"`
	Size           string          `json:"size,omitempty"`
	Material       string          `json:"material,omitempty"`
	Rating         float64         `json:"rating"`
	Tags           []string        `json:"tags"`
	Warranty       string          `json:"warranty,omitempty"`
	DateAdded      time.Time       `json:"dateAdded"`
	DateModified   time.Time       `json:"dateModified"`
}

func toProductView(p *domain.Product) *ProductView {
	images, tags := p.Images, p.Tags
	if images == nil {
		images = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return &ProductView{
		ID:             p.ID,
		ShopID:         p.ShopID,
		Name:           p.Name,
		Description:    p.Description,
		Brand:          p.Brand,
		Category:       p.Category,
		SKU:            p.SKU,
		Price:          p.Price,
		Discount:       p.Discount,
		EffectivePrice: p.EffectivePrice(),
		ShippingCost:   p.ShippingCost,
		StockQuantity:  p.StockQuantity,
		TotalSale:      p.TotalSale,
		TotalSaleValue: p.TotalSaleValue,
		Status:         string(p.Status),
		Images:         images,
		ThumbnailImage: p.ThumbnailImage,
		Weight:         p.Weight,
		Dimensions:     DimensionsDTO(p.Dimensions),
		Color:          p.Color,
		Size:           p.Size,
		Material:       p.Material,
		Rating:         p.Rating,
		Tags:           tags,
		Warranty:       p.Warranty,
		DateAdded:      p.DateAdded,
		DateModified:   p.DateModified,
	}
}

func toProductViews(products []*domain.Product) []*ProductView {
	out := make([]*ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p))
	}
	return out
}

type PlatformTotalsView struct {
	TotalSale      int64           `json:"totalSale"`
	TotalSaleValue decimal.Decimal `json:"totalSaleValue"`
}

type ShopCustomerView struct {
	CustomerID  string `json:"customerID"`
	Name        string `json:"name"`
	OrdersCount int    `json:"ordersCount"`
}

type ShopView struct {
	ID                       string             `json:"_id"`
	Name                     string             `json:"name"`
	OwnerID                  string             `json:"owner"`
	Description              string             `json:"description"`
	Location                 LocationDTO        `json:"location"`
	ProductIDs               []string           `json:"products"`
	Customers                []ShopCustomerView `json:"customers"`
	PlatformDiscount         decimal.Decimal    `json:"platformDiscount"`
	PlatformShippingDiscount decimal.Decimal    `json:"platformShippingDiscount"`
	CreatedAt                time.Time          `json:"createdAt"`
	UpdatedAt                time.Time          `json:"updatedAt"`
}

func toShopCustomerViews(customers []domain.ShopCustomer) []ShopCustomerView {
	out := make([]ShopCustomerView, 0, len(customers))
	for _, c := range customers {
		out = append(out, ShopCustomerView(c))
	}
	return out
}

func toShopView(s *domain.Shop) *ShopView {
	ids := s.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	return &ShopView{
		ID:                       s.ID,
		Name:                     s.Name,
		OwnerID:                  s.OwnerID,
		Description:              s.Description,
		Location:                 LocationDTO(s.Location),
		ProductIDs:               ids,
		Customers:                toShopCustomerViews(s.Customers),
		PlatformDiscount:         s.PlatformDiscount,
		PlatformShippingDiscount: s.PlatformShippingDiscount,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

type CheckShopResult struct {
	HasShop bool      `json:"hasShop"`
	Shop    *ShopView `json:"shop,omitempty"`
}

type OwnerSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type ProductSummary struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ShopDetailView 是店铺列表中展开了店主、商品和顾客名称的视图。
type ShopDetailView struct {
	ID                       string             `json:"_id"`
	Name                     string             `json:"name"`
	Owner                    *OwnerSummary      `json:"owner"`
	Description              string             `json:"description"`
	Location                 LocationDTO        `json:"location"`
	Products                 []ProductSummary   `json:"products"`
	Customers                []ShopCustomerView `json:"customers"`
	PlatformDiscount         decimal.Decimal    `json:"platformDiscount"`
	PlatformShippingDiscount decimal.Decimal    `json:"platformShippingDiscount"`
	CreatedAt                time.Time          `json:"createdAt"`
	UpdatedAt                time.Time          `json:"updatedAt"`
}

type DeleteShopResult struct {
	ShopID          string `json:"shopId"`
	DeletedProducts int64  `json:"deletedProducts"`
}

type CartItemView struct {
	ProductID      string          `json:"productID"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	ThumbnailImage string          `json:"thumbnailImage,omitempty"`
}

type CartView struct {
	ID        string          `json:"_id"`
	UserID    string          `json:"userID"`
	Items     []CartItemView  `json:"items"`
	CartTotal decimal.Decimal `json:"cartTotal"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toCartView(c *domain.Cart) *CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItemView(it))
	}
	return &CartView{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     items,
		CartTotal: c.CartTotal,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type OrderView struct {
	ID              string             `json:"_id"`
	CustomerID      string             `json:"customerID"`
	Products        []OrderItemDTO     `json:"products"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	OrderStatus     string             `json:"orderStatus"`
	PaymentStatus   string             `json:"paymentStatus"`
	PaymentMethod   string             `json:"paymentMethod"`
	ShippingAddress ShippingAddressDTO `json:"shippingAddress"`
	ShippingMethod  string             `json:"shippingMethod"`
	ShippingCost    decimal.Decimal    `json:"shippingCost"`
	Discount        decimal.Decimal    `json:"discount"`
	Notes           string             `json:"notes,omitempty"`
	DateOrdered     time.Time          `json:"dateOrdered"`
	DatePaid        *time.Time         `json:"datePaid,omitempty"`
}

func toOrderView(o *domain.Order) *OrderView {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO(it))
	}
	return &OrderView{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Products:        items,
		TotalAmount:     o.TotalAmount,
		OrderStatus:     string(o.OrderStatus),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		ShippingAddress: ShippingAddressDTO(o.ShippingAddress),
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
		Discount:        o.Discount,
		Notes:           o.Notes,
		DateOrdered:     o.DateOrdered,
		DatePaid:        o.DatePaid,
	}
}

func toOrderViews(orders []*domain.Order) []*OrderView {
	out := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return out
}

type PaymentResult struct {
	Order            *OrderView      `json:"order"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

type RegularCustomerView struct {
	CustomerID  string `json:"customerID"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	OrdersCount int    `json:"ordersCount"`
}
