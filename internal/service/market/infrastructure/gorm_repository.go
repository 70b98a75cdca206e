package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/service/market/domain"
)

var (
	_ domain.UserRepository    = (*GormUserRepository)(nil)
	_ domain.ProductRepository = (*GormProductRepository)(nil)
	_ domain.ShopRepository    = (*GormShopRepository)(nil)
	_ domain.CartRepository    = (*GormCartRepository)(nil)
	_ domain.OrderRepository   = (*GormOrderRepository)(nil)
)

// GormUserRepository 是 UserRepository 的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := conn(ctx, r.db).Create(FromDomainUser(user)).Error
	if _, dup := duplicateKey(err); dup {
		return domain.ErrEmailTaken
	}
	return errors.Wrap(err, "create user")
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var model UserModel
	err := conn(ctx, r.db).Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return ToDomainUser(&model), nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []UserModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	return toDomainUsers(models), nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var models []UserModel
	if err := conn(ctx, r.db).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return toDomainUsers(models), nil
}

func toDomainUsers(models []UserModel) []*domain.User {
	out := make([]*domain.User, 0, len(models))
	for i := range models {
		out = append(out, ToDomainUser(&models[i]))
	}
	return out
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	res := conn(ctx, r.db).Model(&UserModel{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"updated_at":    user.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete user")
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DebitCoin 用 coin >= amount 作为更新条件，并发扣款不会把余额扣成负数。
func (r *GormUserRepository) DebitCoin(ctx context.Context, id string, amount decimal.Decimal, now time.Time) error {
	res := conn(ctx, r.db).Model(&UserModel{}).
		Where("id = ? AND coin >= ?", id, amount).
		Updates(map[string]interface{}{
			"coin":       gorm.Expr("coin - ?", amount),
			"updated_at": now,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "debit coin")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInsufficientBalance
}

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return errors.Wrap(conn(ctx, r.db).Create(FromDomainProduct(product)).Error, "create product")
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "find product")
	}
	return ToDomainProduct(&model), nil
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ProductModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	return toDomainProducts(models), nil
}

func (r *GormProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	q := conn(ctx, r.db).Model(&ProductModel{})
	if f.Brand != "" {
		q = q.Where("brand = ?", f.Brand)
	}
	if f.OnSale {
		q = q.Where("discount > 0")
	}
	if f.Stocked {
		q = q.Where("status = ? AND stock_quantity > 0", string(domain.ProductInStock))
	}
	if f.TopSellers {
		q = q.Order("total_sale DESC")
	}
	q = q.Order("date_added, id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var models []ProductModel
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return toDomainProducts(models), nil
}

func toDomainProducts(models []ProductModel) []*domain.Product {
	out := make([]*domain.Product, 0, len(models))
	for i := range models {
		out = append(out, ToDomainProduct(&models[i]))
	}
	return out
}

// RecordSale 在数据库端原子累加，避免读改写丢失更新。
func (r *GormProductRepository) RecordSale(ctx context.Context, id string, quantity int, value decimal.Decimal, now time.Time) error {
	res := conn(ctx, r.db).Model(&ProductModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_sale":       gorm.Expr("total_sale + ?", quantity),
		"total_sale_value": gorm.Expr("total_sale_value + ?", value),
		"date_modified":    now,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "record sale")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) DeleteByShop(ctx context.Context, shopID string, productIDs []string) (int64, error) {
	q := conn(ctx, r.db).Where("shop_id = ?", shopID)
	if len(productIDs) > 0 {
		q = q.Or("id IN ?", productIDs)
	}
	res := q.Delete(&ProductModel{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete shop products")
	}
	return res.RowsAffected, nil
}

// GormShopRepository 是 ShopRepository 的 GORM 实现
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(FromDomainShop(shop)).Error
	if key, dup := duplicateKey(err); dup {
		if key == "idx_shops_owner" {
			return domain.ErrShopExists
		}
		return domain.ErrShopNameTaken
	}
	return errors.Wrap(err, "create shop")
}

// withRelations 预加载忠诚度记录和商品 id。
func (r *GormShopRepository) withRelations(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Customers", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Select("id", "shop_id").Order("date_added, id") })
}

func (r *GormShopRepository) first(ctx context.Context, query string, arg interface{}) (*domain.Shop, error) {
	var model ShopModel
	if err := r.withRelations(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, errors.Wrap(err, "find shop")
	}
	return ToDomainShop(&model), nil
}

func (r *GormShopRepository) FindByID(ctx context.Context, id string) (*domain.Shop, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormShopRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.Shop, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

func (r *GormShopRepository) FindByName(ctx context.Context, name string) (*domain.Shop, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *GormShopRepository) find(ctx context.Context, query string, args ...interface{}) ([]*domain.Shop, error) {
	var models []ShopModel
	q := r.withRelations(ctx).Order("created_at, id")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "find shops")
	}
	out := make([]*domain.Shop, 0, len(models))
	for i := range models {
		out = append(out, ToDomainShop(&models[i]))
	}
	return out, nil
}

func (r *GormShopRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Shop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, "id IN ?", ids)
}

func (r *GormShopRepository) List(ctx context.Context) ([]*domain.Shop, error) {
	return r.find(ctx, "")
}

func (r *GormShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	m := FromDomainShop(shop)
	err := conn(ctx, r.db).Model(&ShopModel{}).Where("id = ?", shop.ID).Updates(map[string]interface{}{
		"name":                       m.Name,
		"description":                m.Description,
		"loc_address":                m.Location.Address,
		"loc_city":                   m.Location.City,
		"loc_country":                m.Location.Country,
		"platform_discount":          m.PlatformDiscount,
		"platform_shipping_discount": m.PlatformShippingDiscount,
		"updated_at":                 m.UpdatedAt,
	}).Error
	if _, dup := duplicateKey(err); dup {
		return domain.ErrShopNameTaken
	}
	return errors.Wrap(err, "update shop")
}

func (r *GormShopRepository) Delete(ctx context.Context, id string) error {
	db := conn(ctx, r.db)
	if err := db.Where("shop_id = ?", id).Delete(&ShopCustomerModel{}).Error; err != nil {
		return errors.Wrap(err, "delete shop customers")
	}
	res := db.Where("id = ?", id).Delete(&ShopModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete shop")
	}
	if res.RowsAffected == 0 {
		return domain.ErrShopNotFound
	}
	return nil
}

func (r *GormShopRepository) AttachProduct(ctx context.Context, shopID, productID string) error {
	res := conn(ctx, r.db).Model(&ProductModel{}).Where("id = ?", productID).Update("shop_id", shopID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "attach product")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// RecordCustomerOrder 依赖 (shop_id, customer_id) 唯一索引做 upsert。
func (r *GormShopRepository) RecordCustomerOrder(ctx context.Context, shopID, customerID, name string) error {
	record := ShopCustomerModel{ShopID: shopID, CustomerID: customerID, Name: name, OrdersCount: 1}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "customer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"orders_count": gorm.Expr("orders_count + 1"),
			"name":         name,
		}),
	}).Create(&record).Error
	return errors.Wrap(err, "record shop customer")
}

// GormCartRepository 是 CartRepository 的 GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var model CartModel
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartNotFound
		}
		return nil, errors.Wrap(err, "find cart")
	}
	return ToDomainCart(&model), nil
}

// Save 覆盖式保存：更新购物车行并重写全部明细。
func (r *GormCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	m := FromDomainCart(cart)
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		header := *m
		header.Items = nil
		if err := tx.Save(&header).Error; err != nil {
			return errors.Wrap(err, "save cart")
		}
		if err := tx.Where("cart_id = ?", m.ID).Delete(&CartItemModel{}).Error; err != nil {
			return errors.Wrap(err, "clear cart items")
		}
		if len(m.Items) == 0 {
			return nil
		}
		return errors.Wrap(tx.Create(&m.Items).Error, "insert cart items")
	})
}

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return errors.Wrap(conn(ctx, r.db).Create(FromDomainOrder(order)).Error, "create order")
}

func (r *GormOrderRepository) preloadItems(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	if err := r.preloadItems(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "find order")
	}
	return ToDomainOrder(&model), nil
}

func (r *GormOrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	q := r.preloadItems(ctx).Model(&OrderModel{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("order_status = ?", string(f.Status))
	}
	if f.Brand != "" {
		sub := conn(ctx, r.db).Model(&OrderItemModel{}).Select("order_id").Where("brand = ?", f.Brand)
		q = q.Where("id IN (?)", sub)
	}

	var models []OrderModel
	if err := q.Order("date_ordered, id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	out := make([]*domain.Order, 0, len(models))
	for i := range models {
		out = append(out, ToDomainOrder(&models[i]))
	}
	return out, nil
}

// MarkPaid 只更新仍为 unpaid 的订单，保证状态只翻转一次。
func (r *GormOrderRepository) MarkPaid(ctx context.Context, id string, now time.Time) error {
	res := conn(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND payment_status = ?", id, string(domain.PaymentUnpaid)).
		Updates(map[string]interface{}{
			"payment_status": string(domain.PaymentPaid),
			"date_paid":      now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark order paid")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrOrderAlreadyPaid
}

func (r *GormOrderRepository) CountByCustomerForBrand(ctx context.Context, brand string) (map[string]int, error) {
	var rows []struct {
		CustomerID  string
		OrdersCount int
	}
	err := conn(ctx, r.db).Model(&OrderModel{}).
		Select("orders.customer_id AS customer_id, COUNT(DISTINCT orders.id) AS orders_count").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.brand = ?", brand).
		Group("orders.customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count orders by customer")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CustomerID] = row.OrdersCount
	}
	return counts, nil
}
