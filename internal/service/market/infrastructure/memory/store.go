// Package memory 提供进程内的仓储实现，用于本地运行和测试。
package memory

import (
	"context"
	"sync"

	"storefront/internal/service/market/domain"
)

// table 按插入顺序保存记录，保证列表查询结果稳定。
type table[T any] struct {
	rows map[string]T
	keys []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.keys = append(t.keys, id)
	}
	t.rows[id] = v
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, k := range t.keys {
		if k == id {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.rows[k])
	}
	return out
}

func (t *table[T]) clone(cp func(T) T) *table[T] {
	c := &table[T]{rows: make(map[string]T, len(t.rows)), keys: append([]string(nil), t.keys...)}
	for k, v := range t.rows {
		c.rows[k] = cp(v)
	}
	return c
}

type state struct {
	users    *table[*domain.User]
	products *table[*domain.Product]
	shops    *table[*domain.Shop]
	carts    *table[*domain.Cart] // key: userID
	orders   *table[*domain.Order]
}

func (st *state) clone() *state {
	return &state{
		users:    st.users.clone(copyUser),
		products: st.products.clone(copyProduct),
		shops:    st.shops.clone(copyShop),
		carts:    st.carts.clone(copyCart),
		orders:   st.orders.clone(copyOrder),
	}
}

// Store 是所有内存仓储共享的数据。
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

func NewStore() *Store {
	return &Store{st: &state{
		users:    newTable[*domain.User](),
		products: newTable[*domain.Product](),
		shops:    newTable[*domain.Shop](),
		carts:    newTable[*domain.Cart](),
		orders:   newTable[*domain.Order](),
	}}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) == s
}

// WithinTx 串行执行事务，fn 失败时把数据恢复到事务开始前的快照。
// 事务外的写操作同样要拿 txMu，所以回滚不会覆盖并发提交的数据。
// 事务期间的读不加 txMu，可能读到尚未提交的数据。
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite 为一次写操作加锁，返回解锁函数。事务外的写要等进行中的事务结束。
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Shops() *ShopRepository       { return &ShopRepository{s: s} }
func (s *Store) Carts() *CartRepository       { return &CartRepository{s: s} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{s: s} }

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func copyShop(s *domain.Shop) *domain.Shop {
	c := *s
	c.ProductIDs = append([]string(nil), s.ProductIDs...)
	c.Customers = append([]domain.ShopCustomer(nil), s.Customers...)
	return &c
}

func copyCart(cart *domain.Cart) *domain.Cart {
	c := *cart
	c.Items = append([]domain.CartItem(nil), cart.Items...)
	return &c
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.DatePaid != nil {
		t := *o.DatePaid
		c.DatePaid = &t
	}
	return &c
}
