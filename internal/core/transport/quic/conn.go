package quic

import (
	"context"
	"crypto/x509"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-quicboot/pkg/types"
)

// Connection 已完成握手的连接
//
// 只能通过 Incoming.Await 或 Connecting.Await 获得。
type Connection struct {
	id       string
	role     types.Role
	qc       *quic.Conn
	endpoint *Endpoint
	opened   time.Time
}

func newConnection(e *Endpoint, qc *quic.Conn, role types.Role) *Connection {
	c := &Connection{
		id:       uuid.NewString(),
		role:     role,
		qc:       qc,
		endpoint: e,
		opened:   time.Now(),
	}

	e.reporter.ConnectionOpened(role)
	go func() {
		<-qc.Context().Done()
		e.reporter.ConnectionClosed(role)
		logger.Debug("连接已结束", "conn", c.id, "cause", context.Cause(qc.Context()))
	}()
	return c
}

// ID 返回连接标识（用于日志）
func (c *Connection) ID() string {
	return c.id
}

// Role 返回本端角色
func (c *Connection) Role() types.Role {
	return c.role
}

// RemoteAddr 返回对端地址
func (c *Connection) RemoteAddr() net.Addr {
	return c.qc.RemoteAddr()
}

// LocalAddr 返回本地地址
func (c *Connection) LocalAddr() net.Addr {
	return c.qc.LocalAddr()
}

// ServerName 返回握手使用的服务器名
func (c *Connection) ServerName() string {
	return c.qc.ConnectionState().TLS.ServerName
}

// NegotiatedProtocol 返回协商的 ALPN
func (c *Connection) NegotiatedProtocol() string {
	return c.qc.ConnectionState().TLS.NegotiatedProtocol
}

// PeerCertificates 返回对端证书链（服务端侧为空）
func (c *Connection) PeerCertificates() []*x509.Certificate {
	return c.qc.ConnectionState().TLS.PeerCertificates
}

// Opened 返回连接建立时间
func (c *Connection) Opened() time.Time {
	return c.opened
}

// OpenStream 打开双向流，达到对端流上限时阻塞
func (c *Connection) OpenStream(ctx context.Context) (*quic.Stream, error) {
	return c.qc.OpenStreamSync(ctx)
}

// AcceptStream 接受对端打开的双向流
func (c *Connection) AcceptStream(ctx context.Context) (*quic.Stream, error) {
	return c.qc.AcceptStream(ctx)
}

// OpenUniStream 打开单向流，对端不允许时阻塞直到 ctx 结束
func (c *Connection) OpenUniStream(ctx context.Context) (*quic.SendStream, error) {
	return c.qc.OpenUniStreamSync(ctx)
}

// Close 关闭连接
func (c *Connection) Close() error {
	return c.qc.CloseWithError(0, "")
}

// CloseWithError 以应用错误码关闭连接
func (c *Connection) CloseWithError(code uint64, msg string) error {
	return c.qc.CloseWithError(quic.ApplicationErrorCode(code), msg)
}

// Done 连接结束时关闭
func (c *Connection) Done() <-chan struct{} {
	return c.qc.Context().Done()
}

// Err 返回连接结束的原因，连接仍存活时为 nil
func (c *Connection) Err() error {
	return context.Cause(c.qc.Context())
}
