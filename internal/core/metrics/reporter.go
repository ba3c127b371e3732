package metrics

import (
	"time"

	"github.com/dep2p/go-quicboot/pkg/types"
)

// Reporter 连接生命周期指标记录接口
type Reporter interface {
	// HandshakeSucceeded 记录一次成功握手
	HandshakeSucceeded(role types.Role, elapsed time.Duration)

	// HandshakeFailed 记录一次失败握手
	HandshakeFailed(role types.Role, failure types.HandshakeFailure, elapsed time.Duration)

	// VerificationRejected 记录一次策略拒绝
	VerificationRejected(reason types.RejectReason)

	// ConnectionOpened 活动连接数加一
	ConnectionOpened(role types.Role)

	// ConnectionClosed 活动连接数减一
	ConnectionClosed(role types.Role)

	// StreamBytes 记录流上收发的应用层字节数
	StreamBytes(direction Direction, n int)
}

// Direction 数据方向
type Direction string

const (
	// Inbound 接收
	Inbound Direction = "in"
	// Outbound 发送
	Outbound Direction = "out"
)

// Nop 不记录任何指标
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) HandshakeSucceeded(types.Role, time.Duration) {}
func (Nop) HandshakeFailed(types.Role, types.HandshakeFailure, time.Duration) {}
func (Nop) VerificationRejected(types.RejectReason) {}
func (Nop) ConnectionOpened(types.Role) {}
func (Nop) ConnectionClosed(types.Role) {}
func (Nop) StreamBytes(Direction, int) {}
