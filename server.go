package quicboot

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-quicboot/config"
	qtransport "github.com/dep2p/go-quicboot/internal/core/transport/quic"
	"github.com/dep2p/go-quicboot/internal/protocol/timefmt"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var logger = log.Logger("quicboot")

const (
	// startTimeout 启动 Fx 应用的超时
	startTimeout = 30 * time.Second

	// hookTimeout 端点关闭后执行其余停止钩子的超时
	hookTimeout = 5 * time.Second
)

// Server 接受 QUIC 连接并提供时间服务
//
// 构造时即完成身份准备与端点绑定；Start 之后开始接受连接。
type Server struct {
	mu sync.Mutex

	app      *fx.App
	endpoint *qtransport.Endpoint
	identity *types.Identity
	service  *timefmt.Service

	started bool
	closed  bool

	cancel    context.CancelFunc
	serveDone chan error
}

// NewServer 创建服务端
//
// 配置校验失败、身份生成/持久化失败或绑定失败时返回错误。
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	s := &Server{}
	app, err := buildServerApp(cfg, o, s)
	if err != nil {
		return nil, err
	}
	s.app = app
	return s, nil
}

// Identity 返回服务端身份
//
// Identity().CertDER 可直接作为客户端的固定证书。
func (s *Server) Identity() *types.Identity {
	return s.identity
}

// Addr 返回实际绑定的本地地址
func (s *Server) Addr() net.Addr {
	return s.endpoint.LocalAddr()
}

// Endpoint 返回底层端点
func (s *Server) Endpoint() *qtransport.Endpoint {
	return s.endpoint
}

// Start 启动服务端并在后台接受连接
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := s.app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	serveCtx, serveCancel := context.WithCancel(context.Background())
	s.cancel = serveCancel
	s.serveDone = make(chan error, 1)
	go func() {
		s.serveDone <- s.endpoint.Serve(serveCtx, s.service.Handle)
	}()

	s.started = true
	logger.Info("服务端已启动",
		"addr", s.endpoint.LocalAddr().String(),
		"hostnames", s.identity.Hostnames)
	return nil
}

// Stop 停止服务端
//
// 先排空：不再接受新连接，等待已有连接结束；ctx 结束时强制关闭剩余连接。
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.started {
		return ErrNotStarted
	}
	return s.stopLocked(ctx)
}

func (s *Server) stopLocked(ctx context.Context) error {
	logger.Info("正在停止服务端")

	// 排空在 fx 停止之前完成，ctx 结束时强制关闭剩余连接
	err := s.endpoint.Shutdown(ctx)

	// 端点已关闭，Serve 随之返回
	s.cancel()
	err = multierr.Append(err, <-s.serveDone)

	// 端点已关闭，停止钩子立即返回
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
	defer cancel()
	err = multierr.Append(err, s.app.Stop(stopCtx))

	s.started = false
	s.closed = true
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	logger.Info("服务端已停止")
	return nil
}

// Close 立即关闭服务端
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if !s.started {
		s.closed = true
		return s.endpoint.Close()
	}

	err := s.endpoint.Close()
	return multierr.Append(err, s.stopLocked(context.Background()))
}
