package quic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-quicboot/pkg/types"
)

// abandonCode 放弃握手时使用的应用错误码
const abandonCode quic.ApplicationErrorCode = 0x1

// Accept 接受一个传输层连接（第一阶段）
//
// 返回的 Incoming 尚未完成握手，不暴露对端地址。
// 端点排空后返回 types.ErrEndpointDraining。
func (e *Endpoint) Accept(ctx context.Context) (*Incoming, error) {
	if e.role != types.RoleServer {
		return nil, types.ErrWrongRole
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}

	qc, err := e.listener.Accept(ctx)
	if err != nil {
		e.release()
		if state := e.State(); state != types.EndpointBound || errors.Is(err, quic.ErrServerClosed) {
			return nil, stateError(state)
		}
		return nil, err
	}

	// 接受任务的登记转交给连接
	e.track(qc)
	logger.Debug("接受传输层连接", "remote", qc.RemoteAddr().String())
	return &Incoming{endpoint: e, qc: qc, accepted: time.Now()}, nil
}

// stateError 返回非 Bound 状态对应的错误
func stateError(state types.EndpointState) error {
	if state == types.EndpointClosed {
		return types.ErrEndpointClosed
	}
	return types.ErrEndpointDraining
}

// Incoming 服务端待定连接
//
// Accepted → Established | Failed
type Incoming struct {
	endpoint *Endpoint
	qc       *quic.Conn
	accepted time.Time

	mu    sync.Mutex
	state types.HandshakeState
	conn  *Connection
	err   error
}

// State 返回握手状态
func (i *Incoming) State() types.HandshakeState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Await 等待握手完成（第二阶段）
//
// 失败返回 *types.HandshakeError，不影响端点。ctx 结束时放弃本次握手。
// 重复调用返回相同结果。
func (i *Incoming) Await(ctx context.Context) (*Connection, error) {
	switch waitHandshake(ctx, i.qc.HandshakeComplete(), i.qc.Context().Done()) {
	case handshakeComplete:
		i.resolve(nil, nil)
	case handshakeClosed:
		i.resolve(context.Cause(i.qc.Context()), nil)
	case handshakeAbandoned:
		_ = i.qc.CloseWithError(abandonCode, "handshake abandoned")
		i.resolve(ctx.Err(), ctx.Err())
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.conn, i.err
}

// handshakeWait 等待握手的结果
type handshakeWait int

const (
	handshakeComplete handshakeWait = iota
	handshakeClosed
	handshakeAbandoned
)

// waitHandshake 等待握手完成、连接关闭或 ctx 结束
//
// 握手完成优先：连接随后立即关闭时两个通道可能同时就绪。
func waitHandshake(ctx context.Context, complete, closed <-chan struct{}) handshakeWait {
	select {
	case <-complete:
		return handshakeComplete
	default:
	}

	select {
	case <-complete:
		return handshakeComplete
	case <-closed:
	case <-ctx.Done():
		select {
		case <-complete:
			return handshakeComplete
		default:
			return handshakeAbandoned
		}
	}

	select {
	case <-complete:
		return handshakeComplete
	default:
		return handshakeClosed
	}
}

// resolve 记录握手结果，cause 为 nil 表示成功，只生效一次
func (i *Incoming) resolve(cause, ctxErr error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != types.HandshakeAccepted {
		return
	}

	e := i.endpoint
	elapsed := time.Since(i.accepted)

	if cause == nil {
		i.state = types.HandshakeEstablished
		i.conn = newConnection(e, i.qc, types.RoleServer)
		e.reporter.HandshakeSucceeded(types.RoleServer, elapsed)

		logger.Info("握手完成",
			"role", "server",
			"conn", i.conn.ID(),
			"remote", i.conn.RemoteAddr().String(),
			"serverName", i.conn.ServerName())
		return
	}

	he := newHandshakeError(types.RoleServer, nil, cause, nil, ctxErr)
	i.state = types.HandshakeFailed
	i.err = he
	e.reporter.HandshakeFailed(types.RoleServer, he.Failure, elapsed)

	var te *quic.TransportError
	errors.As(cause, &te)
	logger.Warn("握手失败",
		"role", "server",
		"remote", i.qc.RemoteAddr().String(),
		"failure", he.Failure.String(),
		"alert", alertName(te),
		"error", cause)
}
