package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// Connect 发起连接
//
// 立即返回待定连接，握手在后台进行；ctx 控制整个连接尝试。
// serverName 用于 SNI 并交给验证策略，可为空。
func (e *Endpoint) Connect(ctx context.Context, remote, serverName string) (*Connecting, error) {
	if e.role != types.RoleClient {
		return nil, types.ErrWrongRole
	}
	raddr, err := net.ResolveUDPAddr("udp", remote)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, remote, err)
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithCancel(ctx)
	c := &Connecting{
		endpoint: e,
		remote:   raddr,
		started:  time.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	tlsConf := e.client.TLS.Clone()
	tlsConf.ServerName = serverName
	if verify := tlsConf.VerifyConnection; verify != nil {
		tlsConf.VerifyConnection = func(cs tls.ConnectionState) error {
			err := verify(cs)
			var rej *sectls.RejectionError
			if errors.As(err, &rej) {
				c.reject(rej.Outcome)
				e.reporter.VerificationRejected(rej.Outcome.Reason)
			}
			return err
		}
	}

	logger.Debug("发起连接", "remote", raddr.String(), "serverName", serverName)
	go func() {
		defer cancel()
		qc, err := e.transport.Dial(dialCtx, raddr, tlsConf, e.client.Transport)
		c.resolve(qc, err)
	}()
	return c, nil
}

// Connecting 客户端待定连接
//
// Accepted → Established | Failed
type Connecting struct {
	endpoint *Endpoint
	remote   net.Addr
	started  time.Time
	cancel   context.CancelFunc
	done     chan struct{}

	mu       sync.Mutex
	state    types.HandshakeState
	rejected *types.Outcome
	conn     *Connection
	err      error
}

// State 返回握手状态
func (c *Connecting) State() types.HandshakeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Await 等待握手结果
//
// 失败返回 *types.HandshakeError。ctx 结束时取消本次尝试并返回 Timeout。
func (c *Connecting) Await(ctx context.Context) (*Connection, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		c.cancel()
		<-c.done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.err
}

// Done 握手结束（成功或失败）时关闭
func (c *Connecting) Done() <-chan struct{} {
	return c.done
}

func (c *Connecting) reject(outcome types.Outcome) {
	c.mu.Lock()
	c.rejected = &outcome
	c.mu.Unlock()
}

func (c *Connecting) resolve(qc *quic.Conn, err error) {
	e := c.endpoint
	elapsed := time.Since(c.started)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(c.done)

	if err != nil {
		he := newHandshakeError(types.RoleClient, c.remote, err, c.rejected, nil)
		c.state = types.HandshakeFailed
		c.err = he
		e.release()
		e.reporter.HandshakeFailed(types.RoleClient, he.Failure, elapsed)

		logger.Warn("连接失败",
			"remote", c.remote.String(),
			"failure", he.Failure.String(),
			"reason", he.Reason.String(),
			"error", err)
		return
	}

	// 尝试的登记转交给连接
	e.track(qc)
	c.state = types.HandshakeEstablished
	c.conn = newConnection(e, qc, types.RoleClient)
	e.reporter.HandshakeSucceeded(types.RoleClient, elapsed)

	logger.Info("握手完成",
		"role", "client",
		"conn", c.conn.ID(),
		"remote", c.conn.RemoteAddr().String(),
		"alpn", c.conn.NegotiatedProtocol())
}
