package quicboot

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/internal/core/metrics"
	qtransport "github.com/dep2p/go-quicboot/internal/core/transport/quic"
	"github.com/dep2p/go-quicboot/internal/protocol/timefmt"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
)

// Client 按显式选择的验证策略连接服务端
type Client struct {
	mu sync.Mutex

	app        *fx.App
	endpoint   *qtransport.Endpoint
	policy     interfaces.VerificationPolicy
	reporter   metrics.Reporter
	serverName string

	started bool
	closed  bool
}

// NewClient 创建客户端
//
// cfg.Security.Policy 必须为 permissive 或 anchored。
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	c := &Client{
		reporter:   metrics.Nop{},
		serverName: cfg.Security.ServerName,
	}
	app, err := buildClientApp(cfg, o, c)
	if err != nil {
		return nil, err
	}
	c.app = app
	return c, nil
}

// Policy 返回使用中的验证策略
func (c *Client) Policy() interfaces.VerificationPolicy {
	return c.policy
}

// Endpoint 返回底层端点
func (c *Client) Endpoint() *qtransport.Endpoint {
	return c.endpoint
}

// Start 启动客户端
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := c.app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	c.started = true
	logger.Info("客户端已启动",
		"addr", c.endpoint.LocalAddr().String(),
		"policy", c.policy.Name())
	return nil
}

// Connect 连接 remote，使用配置中的服务器名
func (c *Client) Connect(ctx context.Context, remote string) (*qtransport.Connection, error) {
	return c.ConnectName(ctx, remote, c.serverName)
}

// ConnectName 以指定的服务器名连接 remote 并等待握手完成
//
// 失败时返回 *types.HandshakeError。
func (c *Client) ConnectName(ctx context.Context, remote, serverName string) (*qtransport.Connection, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	connecting, err := c.endpoint.Connect(ctx, remote, serverName)
	if err != nil {
		return nil, err
	}
	conn, err := connecting.Await(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("已连接", "remote", conn.RemoteAddr().String(), "conn", conn.ID())
	return conn, nil
}

// QueryTime 在 conn 上请求服务端按 format 格式化当前时间
func (c *Client) QueryTime(ctx context.Context, conn *qtransport.Connection, format string) (string, error) {
	return timefmt.Query(ctx, conn, format, timefmt.WithReporter(c.reporter))
}

func (c *Client) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.started {
		return ErrNotStarted
	}
	return nil
}

// Stop 等待所有连接结束后释放端点，ctx 结束时强制关闭
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if !c.started {
		return ErrNotStarted
	}

	// 排空在 fx 停止之前完成，ctx 结束时强制关闭剩余连接
	err := c.endpoint.Shutdown(ctx)
	err = multierr.Append(err, c.stopApp(ctx))
	c.started = false
	c.closed = true
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// stopApp 在端点关闭后执行停止钩子
func (c *Client) stopApp(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
	defer cancel()
	return c.app.Stop(stopCtx)
}

// Close 立即关闭客户端
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	err := c.endpoint.Close()
	if c.started {
		c.started = false
		err = multierr.Append(err, c.stopApp(context.Background()))
	}
	return err
}
