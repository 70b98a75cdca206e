package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserModel 对应 users 表
type UserModel struct {
	ID           string          `gorm:"primaryKey;size:36"`
	Email        string          `gorm:"size:191;uniqueIndex:idx_users_email;not null"`
	Name         string          `gorm:"size:255;not null"`
	PasswordHash string          `gorm:"size:255;not null"`
	Role         string          `gorm:"size:32;not null;default:user"`
	Coin         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// ProductModel 对应 products 表，ShopID 为空表示未挂到任何店铺。
type ProductModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	ShopID         *string         `gorm:"size:36;index"`
	Name           string          `gorm:"size:255;not null"`
	Description    string          `gorm:"type:text"`
	Brand          string          `gorm:"size:191;index;not null;default:Generic"`
	Category       string          `gorm:"size:191;not null;default:Miscellaneous"`
	SKU            string          `gorm:"size:64"`
	Price          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	StockQuantity  int             `gorm:"not null;default:0"`
	TotalSale      int             `gorm:"not null;default:0;index"`
	TotalSaleValue decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Status         string          `gorm:"size:32;not null;default:'in stock'"`
	Images         []string        `gorm:"serializer:json;type:json"`
	ThumbnailImage string          `gorm:"size:1024"`
	Weight         float64
	Dimensions     DimensionsModel `gorm:"embedded;embeddedPrefix:dim_"`
	Color          string          `gorm:"size:64"`
	Size           string          `gorm:"size:64"`
	Material       string          `gorm:"size:128"`
	Rating         float64
	Tags           []string `gorm:"serializer:json;type:json"`
	Warranty       string   `gorm:"size:255"`
	DateAdded      time.Time
	DateModified   time.Time
}

func (ProductModel) TableName() string { return "products" }

type DimensionsModel struct {
	Length float64
	Width  float64
	Height float64
}

// ShopModel 对应 shops 表，一个店主只能有一个店铺。
type ShopModel struct {
	ID                       string              `gorm:"primaryKey;size:36"`
	Name                     string              `gorm:"size:191;uniqueIndex:idx_shops_name;not null"`
	OwnerID                  string              `gorm:"size:36;uniqueIndex:idx_shops_owner;not null"`
	Description              string              `gorm:"type:text"`
	Location                 LocationModel       `gorm:"embedded;embeddedPrefix:loc_"`
	PlatformDiscount         decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0"`
	PlatformShippingDiscount decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0"`
	Customers                []ShopCustomerModel `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Products                 []ProductModel      `gorm:"foreignKey:ShopID"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (ShopModel) TableName() string { return "shops" }

type LocationModel struct {
	Address string `gorm:"size:255"`
	City    string `gorm:"size:128"`
	Country string `gorm:"size:128"`
}

// ShopCustomerModel 对应 shop_customers 表，(shop_id, customer_id) 唯一。
type ShopCustomerModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ShopID      string `gorm:"size:36;not null;uniqueIndex:idx_shop_customer"`
	CustomerID  string `gorm:"size:36;not null;uniqueIndex:idx_shop_customer"`
	Name        string `gorm:"size:255"`
	OrdersCount int    `gorm:"not null;default:0"`
}

func (ShopCustomerModel) TableName() string { return "shop_customers" }

// CartModel 对应 carts 表，每个用户一个。
type CartModel struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    string          `gorm:"size:36;uniqueIndex:idx_carts_user;not null"`
	CartTotal decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Items     []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartModel) TableName() string { return "carts" }

type CartItemModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	CartID         string          `gorm:"size:36;not null;index"`
	Position       int             `gorm:"not null"`
	ProductID      string          `gorm:"size:36;not null"`
	Name           string          `gorm:"size:255"`
	Brand          string          `gorm:"size:191"`
	Price          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Quantity       int             `gorm:"not null"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	ThumbnailImage string          `gorm:"size:1024"`
}

func (CartItemModel) TableName() string { return "cart_items" }

// OrderModel 对应 orders 表，收货地址内嵌为 ship_ 前缀的列。
type OrderModel struct {
	ID              string               `gorm:"primaryKey;size:36"`
	CustomerID      string               `gorm:"size:36;not null;index"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(20,2);not null"`
	OrderStatus     string               `gorm:"size:32;not null;default:pending;index"`
	PaymentStatus   string               `gorm:"size:32;not null;default:unpaid"`
	PaymentMethod   string               `gorm:"size:32;not null"`
	ShippingAddress ShippingAddressModel `gorm:"embedded;embeddedPrefix:ship_"`
	ShippingMethod  string               `gorm:"size:64;not null"`
	ShippingCost    decimal.Decimal      `gorm:"type:decimal(20,2);not null;default:0"`
	Discount        decimal.Decimal      `gorm:"type:decimal(20,2);not null;default:0"`
	Notes           string               `gorm:"type:text"`
	DateOrdered     time.Time
	DatePaid        *time.Time
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderModel) TableName() string { return "orders" }

type ShippingAddressModel struct {
	FullName     string `gorm:"size:255"`
	AddressLine1 string `gorm:"size:255"`
	AddressLine2 string `gorm:"size:255"`
	City         string `gorm:"size:128"`
	State        string `gorm:"size:128"`
	PostalCode   string `gorm:"size:32"`
	Country      string `gorm:"size:128"`
	PhoneNumber  string `gorm:"size:32"`
}

type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   string          `gorm:"size:36;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"size:36;not null"`
	Name      string          `gorm:"size:255"`
	Brand     string          `gorm:"size:191;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// AllModels 列出需要迁移的表。
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&ShopModel{},
		&ShopCustomerModel{},
		&ProductModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
