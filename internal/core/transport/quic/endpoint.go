package quic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/quic-go/quic-go"
	"go.uber.org/multierr"

	"github.com/dep2p/go-quicboot/internal/core/metrics"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var logger = log.Logger("core/transport/quic")

// Option 端点选项
type Option func(*Endpoint)

// WithReporter 设置指标记录器
func WithReporter(r metrics.Reporter) Option {
	return func(e *Endpoint) {
		if r != nil {
			e.reporter = r
		}
	}
}

// Endpoint 绑定到本地 UDP 地址的 QUIC 端点
//
// Accept/Connect 可并发调用。
type Endpoint struct {
	role     types.Role
	server   *ServerConfig
	client   *ClientConfig
	reporter metrics.Reporter

	udpConn   *net.UDPConn
	transport *quic.Transport
	listener  *quic.EarlyListener // 仅服务端

	mu          sync.Mutex
	state       types.EndpointState
	outstanding int           // 已跟踪的接受任务、握手和连接
	idle        chan struct{} // outstanding 归零时关闭
	live        map[*quic.Conn]struct{}
}

// BindServer 绑定服务端端点
func BindServer(addr string, cfg *ServerConfig, opts ...Option) (*Endpoint, error) {
	return Bind(addr, cfg, opts...)
}

// BindClient 绑定客户端端点
func BindClient(addr string, cfg *ClientConfig, opts ...Option) (*Endpoint, error) {
	return Bind(addr, cfg, opts...)
}

// Bind 绑定本地地址并创建端点（Unbound → Bound）
//
// 服务端端点在绑定时即开始监听，Accept 之前到达的握手会排队。
// 地址占用和权限不足分别返回 types.ErrAddressInUse 和
// types.ErrBindPermissionDenied，不做重试。
func Bind(addr string, cfg EndpointConfig, opts ...Option) (*Endpoint, error) {
	e := &Endpoint{
		reporter: metrics.Nop{},
		live:     make(map[*quic.Conn]struct{}),
	}

	switch c := cfg.(type) {
	case *ServerConfig:
		if c == nil || c.TLS == nil {
			return nil, ErrNilConfig
		}
		e.role, e.server = types.RoleServer, c
	case *ClientConfig:
		if c == nil || c.TLS == nil {
			return nil, ErrNilConfig
		}
		e.role, e.client = types.RoleClient, c
	default:
		return nil, ErrNilConfig
	}
	for _, opt := range opts {
		opt(e)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}

	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, bindError(addr, err)
	}
	e.udpConn = udpConn
	e.transport = &quic.Transport{Conn: udpConn}

	if e.role == types.RoleServer {
		ln, err := e.transport.ListenEarly(e.server.TLS, e.server.Transport)
		if err != nil {
			_ = multierr.Combine(e.transport.Close(), udpConn.Close())
			return nil, fmt.Errorf("listen: %w", err)
		}
		e.listener = ln
	}

	e.state = types.EndpointBound
	logger.Info("端点已绑定", "role", e.role.String(), "addr", e.LocalAddr().String())
	return e, nil
}

// bindError 将 socket 绑定错误映射为类型化错误
func bindError(addr string, err error) error {
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("%w: %s: %w", types.ErrAddressInUse, addr, err)
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return fmt.Errorf("%w: %s: %w", types.ErrBindPermissionDenied, addr, err)
	default:
		return fmt.Errorf("bind %s: %w", addr, err)
	}
}

// Role 返回端点角色
func (e *Endpoint) Role() types.Role {
	return e.role
}

// LocalAddr 返回实际绑定的本地地址
func (e *Endpoint) LocalAddr() net.Addr {
	return e.udpConn.LocalAddr()
}

// State 返回当前状态
func (e *Endpoint) State() types.EndpointState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ============================================================================
//                              跟踪
// ============================================================================

// acquire 登记一个待完成任务，端点不处于 Bound 时失败
func (e *Endpoint) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case types.EndpointBound:
		e.outstanding++
		return nil
	case types.EndpointDraining:
		return types.ErrEndpointDraining
	default:
		return types.ErrEndpointClosed
	}
}

// release 注销一个任务
func (e *Endpoint) release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.outstanding--
	if e.outstanding == 0 && e.idle != nil {
		close(e.idle)
		e.idle = nil
	}
}

// track 跟踪底层连接直至其结束，结束时注销对应任务
//
// 调用方必须已通过 acquire 持有一个任务。
func (e *Endpoint) track(qc *quic.Conn) {
	e.mu.Lock()
	e.live[qc] = struct{}{}
	e.mu.Unlock()

	go func() {
		<-qc.Context().Done()
		e.mu.Lock()
		delete(e.live, qc)
		e.mu.Unlock()
		e.release()
	}()
}

// Outstanding 返回已跟踪的任务数
func (e *Endpoint) Outstanding() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outstanding
}

// ============================================================================
//                              排空与关闭
// ============================================================================

// WaitIdle 排空端点并等待其空闲（Bound → Draining → Closed）
//
// 立即停止接受新连接，已有连接不受影响。没有未完成任务时立即返回。
// ctx 结束时返回 types.ErrIdleWaitInterrupted，端点保持 Draining。
func (e *Endpoint) WaitIdle(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case types.EndpointClosed:
		e.mu.Unlock()
		return nil
	case types.EndpointBound:
		e.state = types.EndpointDraining
		logger.Debug("端点开始排空", "role", e.role.String(), "outstanding", e.outstanding)
	}
	if e.listener != nil {
		// 重复关闭返回的错误可忽略
		_ = e.listener.Close()
	}

	if e.outstanding == 0 {
		e.mu.Unlock()
		return e.finish()
	}
	if e.idle == nil {
		e.idle = make(chan struct{})
	}
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return e.finish()
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", types.ErrIdleWaitInterrupted, ctx.Err())
	}
}

// Shutdown 排空端点，ctx 结束时强制关闭剩余连接
//
// 返回时端点总是 Closed。
func (e *Endpoint) Shutdown(ctx context.Context) error {
	err := e.WaitIdle(ctx)
	if errors.Is(err, types.ErrIdleWaitInterrupted) {
		logger.Warn("排空超时，强制关闭端点", "role", e.role.String())
		return e.Close()
	}
	return err
}

// finish 释放 socket（Draining → Closed）
func (e *Endpoint) finish() error {
	e.mu.Lock()
	if e.state == types.EndpointClosed {
		e.mu.Unlock()
		return nil
	}
	e.state = types.EndpointClosed
	e.mu.Unlock()

	err := multierr.Combine(e.transport.Close(), e.udpConn.Close())
	logger.Info("端点已关闭", "role", e.role.String())
	return err
}

// Close 立即关闭端点
//
// 终止所有连接和进行中的握手。用于 WaitIdle 被中断后的进程退出。
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.state == types.EndpointClosed {
		e.mu.Unlock()
		return nil
	}
	e.state = types.EndpointDraining
	conns := make([]*quic.Conn, 0, len(e.live))
	for qc := range e.live {
		conns = append(conns, qc)
	}
	e.mu.Unlock()

	var err error
	if e.listener != nil {
		_ = e.listener.Close()
	}
	for _, qc := range conns {
		err = multierr.Append(err, qc.CloseWithError(0, "endpoint closed"))
	}
	if len(conns) > 0 {
		logger.Warn("强制关闭端点", "role", e.role.String(), "connections", len(conns))
	}
	return multierr.Append(err, e.finish())
}
