package infrastructure

import (
	"context"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/service/market/domain/port"
)

const errDuplicateEntry = 1062

// OpenMySQL 建立连接池，按配置执行建表迁移。
func OpenMySQL(cfg bootstrap.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:                 NewGormLogger(200 * time.Millisecond),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(AllModels()...); err != nil {
			return nil, errors.Wrap(err, "auto migrate")
		}
	}
	return db, nil
}

type txKey struct{}

// GormTransactor 把 *gorm.DB 事务放进 ctx，仓储通过 conn 取用。
type GormTransactor struct {
	db *gorm.DB
}

var _ port.Transactor = (*GormTransactor)(nil)

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 优先返回 ctx 中的事务。
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// duplicateKey 判断是否唯一键冲突，返回冲突的索引名。
func duplicateKey(err error) (string, bool) {
	var me *mysqldriver.MySQLError
	if !errors.As(err, &me) || me.Number != errDuplicateEntry {
		return "", false
	}
	// Duplicate entry 'x' for key 'shops.idx_shops_owner'
	msg := me.Message
	if i := strings.LastIndex(msg, "for key '"); i >= 0 {
		key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
		if j := strings.LastIndex(key, "."); j >= 0 {
			key = key[j+1:]
		}
		return key, true
	}
	return "", true
}
