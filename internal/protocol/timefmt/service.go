package timefmt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-quicboot/internal/core/metrics"
	qtransport "github.com/dep2p/go-quicboot/internal/core/transport/quic"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
)

var logger = log.Logger("protocol/timefmt")

// 流错误码
const (
	codeInvalidRequest quic.StreamErrorCode = 0x1
	codeCancelled      quic.StreamErrorCode = 0x2
)

// Config 服务配置
type Config struct {
	// Delay 每个请求的模拟处理延迟
	Delay time.Duration

	// StreamTimeout 单个流的读写期限
	StreamTimeout time.Duration

	// Clock 提供当前时间
	Clock clock.Clock

	// Reporter 指标记录
	Reporter metrics.Reporter
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Delay:         100 * time.Millisecond,
		StreamTimeout: 10 * time.Second,
		Clock:         clock.New(),
		Reporter:      metrics.Nop{},
	}
}

// Option 配置选项函数
type Option func(*Config)

// WithDelay 设置处理延迟
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
	}
}

// WithStreamTimeout 设置流期限
func WithStreamTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.StreamTimeout = d
	}
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		if clk != nil {
			c.Clock = clk
		}
	}
}

// WithReporter 设置指标记录
func WithReporter(r metrics.Reporter) Option {
	return func(c *Config) {
		if r != nil {
			c.Reporter = r
		}
	}
}

// Service 时间格式化服务（服务端）
type Service struct {
	config *Config
}

// NewService 创建服务
func NewService(opts ...Option) *Service {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{config: cfg}
}

// Handle 处理连接上的所有请求流，直到连接结束或 ctx 取消
//
// 签名与 qtransport.Handler 一致，可直接交给 Endpoint.Serve。
func (s *Service) Handle(ctx context.Context, conn *qtransport.Connection) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		str, err := conn.AcceptStream(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("连接不再接受请求", "conn", conn.ID(), "err", err)
			}
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.serveStream(ctx, str); err != nil {
				logger.Warn("处理请求失败", "conn", conn.ID(), "stream", str.StreamID(), "err", err)
			}
		}()
	}
}

// serveStream 处理单个请求流
func (s *Service) serveStream(ctx context.Context, str *quic.Stream) error {
	if s.config.StreamTimeout > 0 {
		_ = str.SetDeadline(time.Now().Add(s.config.StreamTimeout))
	}

	var req Request
	n, err := readMessage(str, &req)
	s.config.Reporter.StreamBytes(metrics.Inbound, n)
	if err != nil {
		str.CancelRead(codeInvalidRequest)
		str.CancelWrite(codeInvalidRequest)
		return err
	}

	if err := s.wait(ctx); err != nil {
		str.CancelWrite(codeCancelled)
		return err
	}

	resp := &Response{}
	out, err := Strftime(s.config.Clock.Now(), req.Format)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Data = out
	}

	n, err = writeMessage(str, resp)
	s.config.Reporter.StreamBytes(metrics.Outbound, n)
	if err != nil {
		str.CancelWrite(codeCancelled)
		return err
	}
	logger.Debug("请求已处理", "stream", str.StreamID(), "format", req.Format)
	return str.Close()
}

// wait 模拟处理延迟
func (s *Service) wait(ctx context.Context) error {
	if s.config.Delay <= 0 {
		return nil
	}
	select {
	case <-s.config.Clock.After(s.config.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query 在 conn 上发送一次请求并返回格式化结果
//
// 服务端返回的错误包装为 ErrRemote。
func Query(ctx context.Context, conn *qtransport.Connection, format string, opts ...Option) (string, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	str, err := conn.OpenStream(ctx)
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		str.CancelRead(codeCancelled)
		str.CancelWrite(codeCancelled)
	})
	defer stop()

	n, err := writeMessage(str, &Request{Format: format})
	cfg.Reporter.StreamBytes(metrics.Outbound, n)
	if err != nil {
		str.CancelRead(codeCancelled)
		str.CancelWrite(codeCancelled)
		return "", fmt.Errorf("send request: %w", ctxOr(ctx, err))
	}
	if err := str.Close(); err != nil {
		return "", fmt.Errorf("send request: %w", ctxOr(ctx, err))
	}

	var resp Response
	n, err = readMessage(str, &resp)
	cfg.Reporter.StreamBytes(metrics.Inbound, n)
	if err != nil {
		return "", fmt.Errorf("read response: %w", ctxOr(ctx, err))
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRemote, resp.Error)
	}
	return resp.Data, nil
}

// ctxOr ctx 已结束时返回 ctx 的错误
func ctxOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
