package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/nacos"
	"storefront/internal/pkg/tracing"
)

// AppCtx 是服务注册路由时可用的上下文。
type AppCtx struct {
	Mux    *http.ServeMux
	Config *Config

	closers    []closer
	middleware []func(http.Handler) http.Handler
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// OnShutdown 登记关停时要执行的清理函数，按后进先出顺序执行。
func (a *AppCtx) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Use 为整个 Mux 追加中间件，先登记的在最外层。
func (a *AppCtx) Use(mw func(http.Handler) http.Handler) {
	a.middleware = append(a.middleware, mw)
}

func (a *AppCtx) handler() http.Handler {
	var h http.Handler = a.Mux
	for i := len(a.middleware) - 1; i >= 0; i-- {
		h = a.middleware[i](h)
	}
	return h
}

// AppInfo 包含了启动服务所需的特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx *AppCtx) error
}

// StartService 封装了通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	cfg := GetCurrentConfig()
	logger.Init(info.ServiceName, cfg.App.LogLevel, cfg.App.PrettyLog)

	// 1. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 业务路由
	appCtx := &AppCtx{Mux: http.NewServeMux(), Config: cfg}
	appCtx.Mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	appCtx.Mux.Handle("GET /metrics", promhttp.Handler())
	if info.RegisterHandlers != nil {
		if err := info.RegisterHandlers(appCtx); err != nil {
			log.Fatal().Err(err).Msg("failed to register handlers")
		}
	}

	// 3. 可选的 Nacos 注册
	var (
		namingClient *nacos.Client
		ip           string
	)
	if cfg.Infra.Nacos.Enabled {
		namingClient, err = nacos.NewNacosClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		if ip, err = outboundIP(); err != nil {
			log.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	// 4. HTTP Server
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(info.Port),
		Handler:           appCtx.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("service", info.ServiceName).Int("port", info.Port).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("addr", server.Addr).Msg("could not listen")
		}
	}()

	// 5. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Str("service", info.ServiceName).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// a. 先从注册中心摘除，避免新流量进入
	if namingClient != nil {
		if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			log.Error().Err(err).Msg("error deregistering from nacos")
		}
	}

	// b. 停止接收请求并等待处理中的请求结束
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}

	// c. 释放业务侧资源（kafka writer、数据库连接等）
	for i := len(appCtx.closers) - 1; i >= 0; i-- {
		c := appCtx.closers[i]
		if err := c.fn(ctx); err != nil {
			log.Error().Err(err).Str("resource", c.name).Msg("error closing resource")
		}
	}

	// d. 刷出缓冲的 span
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer provider")
	}

	log.Info().Str("service", info.ServiceName).Msg("gracefully shut down")
}

func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", errors.Wrap(err, "dial udp")
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
