package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/service/market/domain"
)

var (
	_ domain.UserRepository    = (*UserRepository)(nil)
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.ShopRepository    = (*ShopRepository)(nil)
	_ domain.CartRepository    = (*CartRepository)(nil)
	_ domain.OrderRepository   = (*OrderRepository)(nil)
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lockWrite(ctx)()
	for _, u := range r.s.st.users.rows {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.s.st.users.put(user.ID, copyUser(user))
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users.get(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users.all() {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.st.users.get(id); ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.s.st.users.all()
	out := make([]*domain.User, 0, len(all))
	for _, u := range all {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	defer r.s.lockWrite(ctx)()
	u, ok := r.s.st.users.get(user.ID)
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = user.PasswordHash
	u.Role = user.Role
	u.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()
	if !r.s.st.users.del(id) {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DebitCoin(ctx context.Context, id string, amount decimal.Decimal, now time.Time) error {
	defer r.s.lockWrite(ctx)()
	u, ok := r.s.st.users.get(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	return u.Debit(amount, now)
}

type ProductRepository struct{ s *Store }

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	defer r.s.lockWrite(ctx)()
	r.s.st.products.put(product.ID, copyProduct(product))
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.products.get(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *ProductRepository) FindByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.s.st.products.get(id); ok {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Product
	for _, p := range r.s.st.products.all() {
		if f.Brand != "" && p.Brand != f.Brand {
			continue
		}
		if f.OnSale && !p.OnSale() {
			continue
		}
		if f.Stocked && !p.Stocked() {
			continue
		}
		out = append(out, copyProduct(p))
	}
	if f.TopSellers {
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSale > out[j].TotalSale })
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *ProductRepository) RecordSale(ctx context.Context, id string, quantity int, value decimal.Decimal, now time.Time) error {
	defer r.s.lockWrite(ctx)()
	p, ok := r.s.st.products.get(id)
	if !ok {
		return domain.ErrProductNotFound
	}
	p.RecordSale(quantity, value, now)
	return nil
}

func (r *ProductRepository) DeleteByShop(ctx context.Context, shopID string, productIDs []string) (int64, error) {
	defer r.s.lockWrite(ctx)()
	doomed := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		doomed[id] = true
	}
	var n int64
	for _, p := range r.s.st.products.all() {
		if p.ShopID == shopID || doomed[p.ID] {
			r.s.st.products.del(p.ID)
			n++
		}
	}
	return n, nil
}

type ShopRepository struct{ s *Store }

func (r *ShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	defer r.s.lockWrite(ctx)()
	for _, existing := range r.s.st.shops.rows {
		if existing.OwnerID == shop.OwnerID {
			return domain.ErrShopExists
		}
		if existing.Name == shop.Name {
			return domain.ErrShopNameTaken
		}
	}
	r.s.st.shops.put(shop.ID, copyShop(shop))
	return nil
}

func (r *ShopRepository) FindByID(_ context.Context, id string) (*domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.st.shops.get(id)
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	return copyShop(s), nil
}

func (r *ShopRepository) findOne(match func(*domain.Shop) bool) (*domain.Shop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.st.shops.all() {
		if match(s) {
			return copyShop(s), nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (r *ShopRepository) FindByOwner(_ context.Context, ownerID string) (*domain.Shop, error) {
	return r.findOne(func(s *domain.Shop) bool { return s.OwnerID == ownerID })
}

func (r *ShopRepository) FindByName(_ context.Context, name string) (*domain.Shop, error) {
	return r.findOne(func(s *domain.Shop) bool { return s.Name == name })
}

func (r *ShopRepository) FindByIDs(_ context.Context, ids []string) ([]*domain.Shop, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(s *domain.Shop) bool { return want[s.ID] }), nil
}

func (r *ShopRepository) List(_ context.Context) ([]*domain.Shop, error) {
	return r.filter(func(*domain.Shop) bool { return true }), nil
}

func (r *ShopRepository) filter(match func(*domain.Shop) bool) []*domain.Shop {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Shop
	for _, s := range r.s.st.shops.all() {
		if match(s) {
			out = append(out, copyShop(s))
		}
	}
	return out
}

func (r *ShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	defer r.s.lockWrite(ctx)()
	s, ok := r.s.st.shops.get(shop.ID)
	if !ok {
		return domain.ErrShopNotFound
	}
	for _, other := range r.s.st.shops.rows {
		if other.ID != shop.ID && other.Name == shop.Name {
			return domain.ErrShopNameTaken
		}
	}
	s.Name = shop.Name
	s.Description = shop.Description
	s.Location = shop.Location
	s.PlatformDiscount = shop.PlatformDiscount
	s.PlatformShippingDiscount = shop.PlatformShippingDiscount
	s.UpdatedAt = shop.UpdatedAt
	return nil
}

func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()
	if !r.s.st.shops.del(id) {
		return domain.ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) AttachProduct(ctx context.Context, shopID, productID string) error {
	defer r.s.lockWrite(ctx)()
	s, ok := r.s.st.shops.get(shopID)
	if !ok {
		return domain.ErrShopNotFound
	}
	s.AttachProduct(productID)
	return nil
}

func (r *ShopRepository) RecordCustomerOrder(ctx context.Context, shopID, customerID, name string) error {
	defer r.s.lockWrite(ctx)()
	s, ok := r.s.st.shops.get(shopID)
	if !ok {
		return domain.ErrShopNotFound
	}
	s.RecordPurchase(customerID, name)
	return nil
}

type CartRepository struct{ s *Store }

func (r *CartRepository) FindByUser(_ context.Context, userID string) (*domain.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.st.carts.get(userID)
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return copyCart(c), nil
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	defer r.s.lockWrite(ctx)()
	r.s.st.carts.put(cart.UserID, copyCart(cart))
	return nil
}

type OrderRepository struct{ s *Store }

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	defer r.s.lockWrite(ctx)()
	r.s.st.orders.put(order.ID, copyOrder(order))
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.st.orders.get(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *OrderRepository) List(_ context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Order
	for _, o := range r.s.st.orders.all() {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		if f.Brand != "" && !o.HasBrand(f.Brand) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id string, now time.Time) error {
	defer r.s.lockWrite(ctx)()
	o, ok := r.s.st.orders.get(id)
	if !ok {
		return domain.ErrOrderNotFound
	}
	return o.MarkPaid(now)
}

func (r *OrderRepository) CountByCustomerForBrand(_ context.Context, brand string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int)
	for _, o := range r.s.st.orders.all() {
		if o.HasBrand(brand) {
			counts[o.CustomerID]++
		}
	}
	return counts, nil
}
