package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/service/market/domain"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// newMockDB 用 sqlmock 替代真实 MySQL，SQL 仍由 mysql 方言生成。
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func dupErr(key string) error {
	return &mysqldriver.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry 'x' for key '" + key + "'"}
}

func TestDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		key  string
		dup  bool
	}{
		{"nil", nil, "", false},
		{"other error", errors.New("boom"), "", false},
		{"other mysql error", &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}, "", false},
		{"qualified key", dupErr("shops.idx_shops_owner"), "idx_shops_owner", true},
		{"bare key", dupErr("idx_users_email"), "idx_users_email", true},
		{"wrapped", errors.Wrap(dupErr("shops.idx_shops_name"), "create shop"), "idx_shops_name", true},
		{"no key in message", &mysqldriver.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, dup := duplicateKey(tc.err)
			assert.Equal(t, tc.dup, dup)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormUserRepository(db)

	mock.ExpectExec("INSERT INTO .users.").WillReturnError(dupErr("users.idx_users_email"))

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShopCreate_DuplicateMapsByIndex(t *testing.T) {
	cases := []struct {
		key  string
		want error
	}{
		{"shops.idx_shops_owner", domain.ErrShopExists},
		{"shops.idx_shops_name", domain.ErrShopNameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewGormShopRepository(db)

			mock.ExpectExec("INSERT INTO .shops.").WillReturnError(dupErr(tc.key))

			err := repo.Create(context.Background(), &domain.Shop{ID: "s1", Name: "Acme", OwnerID: "u1"})
			assert.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDebitCoin_ConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormUserRepository(db)

	mock.ExpectExec(`UPDATE .users. SET .*coin.=coin - \?.* WHERE id = \? AND coin >= \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DebitCoin(context.Background(), "u1", decimal.NewFromInt(25), now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitCoin_InsufficientBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormUserRepository(db)

	// 条件不满足时不更新任何行，再确认用户存在
	mock.ExpectExec(`UPDATE .users. SET .* WHERE id = \? AND coin >= \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM .users. WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "coin"}).AddRow("u1", "a@example.com", "10.00"))

	err := repo.DebitCoin(context.Background(), "u1", decimal.NewFromInt(25), now)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitCoin_UnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormUserRepository(db)

	mock.ExpectExec(`UPDATE .users. SET .* WHERE id = \? AND coin >= \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM .users. WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.DebitCoin(context.Background(), "ghost", decimal.NewFromInt(1), now)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_OnlyFlipsUnpaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormOrderRepository(db)

	mock.ExpectExec(`UPDATE .orders. SET .* WHERE id = \? AND payment_status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPaid(context.Background(), "o1", now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormOrderRepository(db)

	mock.ExpectExec(`UPDATE .orders. SET .* WHERE id = \? AND payment_status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM .orders. WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "payment_status"}).AddRow("o1", "u1", "paid"))
	mock.ExpectQuery(`SELECT \* FROM .order_items.`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	err := repo.MarkPaid(context.Background(), "o1", now)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormOrderRepository(db)

	mock.ExpectExec(`UPDATE .orders. SET .* WHERE id = \? AND payment_status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM .orders. WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.MarkPaid(context.Background(), "ghost", now)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCustomerOrder_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormShopRepository(db)

	mock.ExpectExec(`INSERT INTO .shop_customers. .* ON DUPLICATE KEY UPDATE .*orders_count.=orders_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RecordCustomerOrder(context.Background(), "s1", "u1", "Alice"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByCustomerForBrand(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormOrderRepository(db)

	mock.ExpectQuery(`SELECT orders.customer_id AS customer_id, COUNT\(DISTINCT orders.id\) AS orders_count FROM .orders. ` +
		`JOIN order_items ON order_items.order_id = orders.id WHERE order_items.brand = \? GROUP BY .*customer_id`).
		WithArgs("Acme").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "orders_count"}).
			AddRow("u1", 3).
			AddRow("u2", 1))

	counts, err := repo.CountByCustomerForBrand(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 3, "u2": 1}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByShop(t *testing.T) {
	t.Run("owned and listed products", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormProductRepository(db)

		mock.ExpectExec(`DELETE FROM .products. WHERE shop_id = \? OR id IN \(\?,\?\)`).
			WithArgs("s1", "p1", "p2").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteByShop(context.Background(), "s1", []string{"p1", "p2"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owned products only", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormProductRepository(db)

		mock.ExpectExec(`DELETE FROM .products. WHERE shop_id = \?$`).
			WithArgs("s1").
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.DeleteByShop(context.Background(), "s1", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactor_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tx := NewGormTransactor(db)
	repo := NewGormShopRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .shop_customers.").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, repo.RecordCustomerOrder(ctx, "s1", "u1", "Alice"))
		// 嵌套调用复用外层事务
		return tx.WithinTx(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
