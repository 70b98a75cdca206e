package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Infra   InfraConfig   `yaml:"infra"`
	Storage StorageConfig `yaml:"storage"`
	Lock    LockConfig    `yaml:"lock"`
	Auth    AuthConfig    `yaml:"auth"`
	Order   OrderConfig   `yaml:"order"`
}

type AppConfig struct {
	Name         string       `yaml:"name"`
	Port         int          `yaml:"port"`
	LogLevel     string       `yaml:"log_level"`
	PrettyLog    bool         `yaml:"pretty_log"`
	FeatureFlags FeatureFlags `yaml:"feature_flags"`
}

type FeatureFlags struct {
	// 关闭后订单事件只写日志，不投递 kafka
	PublishEvents bool `yaml:"publish_events"`
	EnableCORS    bool `yaml:"enable_cors"`
}

type InfraConfig struct {
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Nacos     NacosConfig     `yaml:"nacos"`
}

type MySQLConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addrs    string `yaml:"addrs"`
	Password string `yaml:"password"`
}

type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type ZookeeperConfig struct {
	Servers        string        `yaml:"servers"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
}

type NacosConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServerAddrs string `yaml:"server_addrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // mysql | memory
}

type LockConfig struct {
	Driver string        `yaml:"driver"` // local | redis | zookeeper
	TTL    time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	Issuer     string        `yaml:"issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type OrderConfig struct {
	ProcessingTimeout  time.Duration `yaml:"processing_timeout"`
	RegularCustomerMin int           `yaml:"regular_customer_min"`
}

// Default 返回本地开发可直接运行的配置。
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "storefront",
			Port:     3001,
			LogLevel: "info",
			FeatureFlags: FeatureFlags{
				EnableCORS: true,
			},
		},
		Infra: InfraConfig{
			MySQL: MySQLConfig{
				MaxOpenConns:    20,
				MaxIdleConns:    5,
				ConnMaxLifetime: time.Hour,
				AutoMigrate:     true,
			},
			Redis:     RedisConfig{Addrs: "localhost:6379"},
			Kafka:     KafkaConfig{Brokers: "localhost:9092", Topic: "storefront-order-events"},
			Zookeeper: ZookeeperConfig{Servers: "localhost:2181", SessionTimeout: 5 * time.Second},
			Nacos:     NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		},
		Storage: StorageConfig{Driver: "memory"},
		Lock:    LockConfig{Driver: "local", TTL: 10 * time.Second},
		Auth: AuthConfig{
			Issuer:     "storefront",
			TokenTTL:   time.Hour,
			BcryptCost: 10,
		},
		Order: OrderConfig{
			ProcessingTimeout:  30 * time.Second,
			RegularCustomerMin: 10,
		},
	}
}

// Load 读取 yaml 配置文件，文件中缺失的字段保留默认值，再叠加环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Infra.MySQL.DSN = getEnv("MYSQL_DSN", cfg.Infra.MySQL.DSN)
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	cfg.Infra.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Infra.Redis.Password)
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", cfg.Infra.Kafka.Brokers)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Zookeeper.Servers = getEnv("ZOOKEEPER_SERVERS", cfg.Infra.Zookeeper.Servers)
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Lock.Driver = getEnv("LOCK_DRIVER", cfg.Lock.Driver)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	if port, err := strconv.Atoi(getEnv("HTTP_PORT", "")); err == nil && port > 0 {
		cfg.App.Port = port
	}
}

// Validate 检查配置的组合是否可用。
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "mysql":
		if c.Infra.MySQL.DSN == "" {
			return errors.New("config: storage.driver=mysql requires infra.mysql.dsn")
		}
	default:
		return errors.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Lock.Driver {
	case "local", "redis", "zookeeper":
	default:
		return errors.Errorf("config: unknown lock driver %q", c.Lock.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.App.Port <= 0 {
		return errors.New("config: app.port must be positive")
	}
	if c.Order.RegularCustomerMin <= 0 {
		c.Order.RegularCustomerMin = 10
	}
	return nil
}

// KafkaBrokers 把逗号分隔的 broker 列表拆开。
func (c *Config) KafkaBrokers() []string {
	return splitList(c.Infra.Kafka.Brokers)
}

func (c *Config) ZookeeperServers() []string {
	return splitList(c.Infra.Zookeeper.Servers)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var current atomic.Pointer[Config]

// Init 从 CONFIG_PATH（默认 configs/config.yaml）加载配置并设为当前配置。
func Init() (*Config, error) {
	path := getEnv("CONFIG_PATH", "configs/config.yaml")
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	return cfg, nil
}

// GetCurrentConfig 返回最近一次加载的配置，未加载时返回默认值。
func GetCurrentConfig() *Config {
	if cfg := current.Load(); cfg != nil {
		return cfg
	}
	return Default()
}

// getEnv 从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
