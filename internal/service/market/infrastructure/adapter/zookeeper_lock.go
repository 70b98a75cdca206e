package adapter

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"

	"storefront/internal/service/market/domain/port"
)

const lockRoot = "/storefront_locks" // 所有分布式锁的根节点

// ZookeeperLocker 是 port.Locker 的 ZooKeeper 实现，基于临时顺序节点排队。
// 锁的生命周期跟随会话，ttl 参数不生效。
type ZookeeperLocker struct {
	conn *zk.Conn
}

var _ port.Locker = (*ZookeeperLocker)(nil)

// NewZookeeperLocker 连接 ZooKeeper 并确保根节点存在。
func NewZookeeperLocker(servers []string, sessionTimeout time.Duration) (*ZookeeperLocker, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrap(err, "connect zookeeper")
	}
	l := &ZookeeperLocker{conn: conn}
	if err := l.ensure(lockRoot); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func (l *ZookeeperLocker) ensure(path string) error {
	_, err := l.conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err != nil && !errors.Is(err, zk.ErrNodeExists) {
		return errors.Wrapf(err, "create lock node %s", path)
	}
	return nil
}

func (l *ZookeeperLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	lockPath := lockRoot + "/" + strings.ReplaceAll(key, "/", "_")
	if err := l.ensure(lockPath); err != nil {
		return nil, err
	}

	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(lockPath+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return nil, errors.Wrap(err, "create sequential node")
	}
	release := func(context.Context) error {
		err := l.conn.Delete(nodePath, -1)
		if err != nil && !errors.Is(err, zk.ErrNoNode) {
			return errors.Wrap(err, "delete lock node")
		}
		return nil
	}

	myNode := nodePath[strings.LastIndex(nodePath, "/")+1:]
	for {
		// 2. 获取全部子节点，按序号排序
		children, _, err := l.conn.Children(lockPath)
		if err != nil {
			_ = release(ctx)
			return nil, errors.Wrap(err, "list lock children")
		}
		sort.Slice(children, func(i, j int) bool { return sequence(children[i]) < sequence(children[j]) })

		// 3. 自己是最小节点即获得锁
		idx := -1
		for i, child := range children {
			if child == myNode {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errors.New("lock node disappeared, session may have expired")
		}
		if idx == 0 {
			return release, nil
		}

		// 4. 否则监听前一个节点
		exists, _, events, err := l.conn.ExistsW(lockPath + "/" + children[idx-1])
		if err != nil {
			_ = release(ctx)
			return nil, errors.Wrap(err, "watch previous node")
		}
		if !exists {
			continue
		}
		select {
		case <-events:
		case <-ctx.Done():
			_ = release(context.Background())
			return nil, errors.Wrapf(ctx.Err(), "wait for lock %s", key)
		}
	}
}

// sequence 取出节点名末尾的 10 位序号，protected 前缀不影响排序。
func sequence(node string) string {
	if len(node) < 10 {
		return node
	}
	return node[len(node)-10:]
}

func (l *ZookeeperLocker) Close() {
	l.conn.Close()
}
