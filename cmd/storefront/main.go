package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/redis"
	"storefront/internal/service/market/application"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
	"storefront/internal/service/market/infrastructure"
	"storefront/internal/service/market/infrastructure/adapter"
	"storefront/internal/service/market/infrastructure/memory"
	"storefront/internal/service/market/interfaces"
)

const serviceName = "storefront"

// storage 是按 storage.driver 选出的一组仓储实现。
type storage struct {
	tx       port.Transactor
	users    domain.UserRepository
	products domain.ProductRepository
	shops    domain.ShopRepository
	carts    domain.CartRepository
	orders   domain.OrderRepository
}

// main 函数是应用的"组装根" (Composition Root)
func main() {
	cfg, err := bootstrap.Init()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		Port:             cfg.App.Port,
		RegisterHandlers: registerHandlers,
	})
}

func registerHandlers(appCtx *bootstrap.AppCtx) error {
	cfg := appCtx.Config
	tracer := otel.Tracer(serviceName)

	// 1. 存储
	store, err := newStorage(appCtx)
	if err != nil {
		return err
	}

	// 2. 分布式锁
	locker, err := newLocker(appCtx)
	if err != nil {
		return err
	}

	// 3. 事件发布
	var publisher port.EventPublisher = adapter.LogEventPublisher{}
	if cfg.App.FeatureFlags.PublishEvents {
		kafkaAdapter := adapter.NewEventKafkaAdapter(mq.NewKafkaWriter(cfg.KafkaBrokers(), cfg.Infra.Kafka.Topic))
		appCtx.OnShutdown("kafka", func(context.Context) error { return kafkaAdapter.Close() })
		publisher = kafkaAdapter
	}

	// 4. 应用服务
	hasher := adapter.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := adapter.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	userSvc := application.NewUserApplicationService(store.users, hasher, tokens, tracer)
	productSvc := application.NewProductApplicationService(store.tx, store.products, store.shops, tracer)
	shopSvc := application.NewShopApplicationService(store.tx, store.shops, store.users, store.products, tracer)
	cartSvc := application.NewCartApplicationService(locker, cfg.Lock.TTL, store.carts, store.products, store.users, tracer)
	orderSvc := application.NewOrderApplicationService(
		store.tx, locker,
		application.OrderRepositories{Users: store.users, Products: store.products, Shops: store.shops, Orders: store.orders},
		publisher,
		application.OrderOptions{
			ProcessingTimeout:  cfg.Order.ProcessingTimeout,
			LockTTL:            cfg.Lock.TTL,
			RegularCustomerMin: cfg.Order.RegularCustomerMin,
		},
		tracer,
	)

	// 5. 路由
	if cfg.App.FeatureFlags.EnableCORS {
		appCtx.Use(interfaces.CORS)
	}
	interfaces.RegisterHomepage(appCtx.Mux)
	interfaces.NewUserHandler(userSvc).RegisterRoutes(appCtx.Mux)
	interfaces.NewProductHandler(productSvc).RegisterRoutes(appCtx.Mux)
	interfaces.NewShopHandler(shopSvc, orderSvc).RegisterRoutes(appCtx.Mux)
	interfaces.NewCartHandler(cartSvc).RegisterRoutes(appCtx.Mux)
	interfaces.NewOrderHandler(orderSvc).RegisterRoutes(appCtx.Mux)
	return nil
}

func newStorage(appCtx *bootstrap.AppCtx) (*storage, error) {
	cfg := appCtx.Config
	switch strings.ToLower(cfg.Storage.Driver) {
	case "mysql":
		db, err := infrastructure.OpenMySQL(cfg.Infra.MySQL)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql.DB")
		}
		appCtx.OnShutdown("mysql", func(context.Context) error { return sqlDB.Close() })
		log.Info().Msg("storage: mysql")
		return &storage{
			tx:       infrastructure.NewGormTransactor(db),
			users:    infrastructure.NewGormUserRepository(db),
			products: infrastructure.NewGormProductRepository(db),
			shops:    infrastructure.NewGormShopRepository(db),
			carts:    infrastructure.NewGormCartRepository(db),
			orders:   infrastructure.NewGormOrderRepository(db),
		}, nil
	case "memory", "":
		s := memory.NewStore()
		log.Warn().Msg("storage: in-memory, data is lost on restart")
		return &storage{
			tx:       s,
			users:    s.Users(),
			products: s.Products(),
			shops:    s.Shops(),
			carts:    s.Carts(),
			orders:   s.Orders(),
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newLocker(appCtx *bootstrap.AppCtx) (port.Locker, error) {
	cfg := appCtx.Config
	switch strings.ToLower(cfg.Lock.Driver) {
	case "redis":
		client, err := redis.NewClient(cfg.Infra.Redis.Addrs, cfg.Infra.Redis.Password)
		if err != nil {
			return nil, err
		}
		appCtx.OnShutdown("redis", func(context.Context) error { return client.Close() })
		locker, err := adapter.NewRedisLocker(client)
		if err != nil {
			return nil, err
		}
		return locker, nil
	case "zookeeper":
		locker, err := adapter.NewZookeeperLocker(cfg.ZookeeperServers(), cfg.Infra.Zookeeper.SessionTimeout)
		if err != nil {
			return nil, err
		}
		appCtx.OnShutdown("zookeeper", func(context.Context) error {
			locker.Close()
			return nil
		})
		return locker, nil
	case "local", "":
		return adapter.NewLocalLocker(), nil
	default:
		return nil, errors.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}
}
