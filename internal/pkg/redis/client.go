package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// Client 封装 go-redis，额外维护按名字注册的 Lua 脚本。
type Client struct {
	client goredis.UniversalClient

	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// NewClient 连接 redis。addrs 为逗号分隔的地址，多于一个时使用集群模式。
func NewClient(addrs, password string) (*Client, error) {
	var list []string
	for _, a := range strings.Split(addrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			list = append(list, a)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("redis: no address configured")
	}

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:       list,
		Password:    password,
		DialTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return NewFromUniversal(rdb), nil
}

// NewFromUniversal 包装一个已有的客户端。
func NewFromUniversal(rdb goredis.UniversalClient) *Client {
	return &Client{client: rdb, scripts: make(map[string]*goredis.Script)}
}

// LoadScriptFromContent 注册脚本并预加载到服务端。
func (c *Client) LoadScriptFromContent(name, src string) error {
	script := goredis.NewScript(src)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := script.Load(ctx, c.client).Err(); err != nil {
		return errors.Wrapf(err, "load script %s", name)
	}

	c.mu.Lock()
	c.scripts[name] = script
	c.mu.Unlock()
	return nil
}

// RunScript 执行已注册的脚本，EVALSHA 未命中时自动回退到 EVAL。
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("script %s not loaded", name)
	}
	return script.Run(ctx, c.client, keys, args...).Result()
}

func (c *Client) GetClient() goredis.UniversalClient {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}
