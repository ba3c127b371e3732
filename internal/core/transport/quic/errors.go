package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/quic-go/quic-go"

	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var (
	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNilConfig 未提供端点配置
	ErrNilConfig = errors.New("endpoint config is required")
)

// TLS alert 编号
const (
	alertProtocolVersion       = 70
	alertNoApplicationProtocol = 120
	alertBadCertificate        = 42
	alertCertificateUnknown    = 46
)

// newHandshakeError 将握手错误分类为 *types.HandshakeError
//
// rejected 为本次握手中策略给出的拒绝结果（可能为 nil）。
// ctxErr 为等待方上下文的错误（可能为 nil）。
func newHandshakeError(role types.Role, remote net.Addr, err error, rejected *types.Outcome, ctxErr error) *types.HandshakeError {
	he := &types.HandshakeError{Role: role, Remote: remote, Err: err}

	var rej *sectls.RejectionError
	switch {
	case rejected != nil:
		he.Reason = rejected.Reason
		he.Failure = rejected.Reason.Failure()
	case errors.As(err, &rej):
		he.Reason = rej.Outcome.Reason
		he.Failure = rej.Outcome.Reason.Failure()
	case ctxErr != nil, errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		he.Failure = types.FailureTimeout
	default:
		he.Failure = classifyTransportError(err)
	}
	return he
}

// classifyTransportError 按 quic-go 错误类型判定失败类型
func classifyTransportError(err error) types.HandshakeFailure {
	var (
		handshakeTimeout *quic.HandshakeTimeoutError
		idleTimeout      *quic.IdleTimeoutError
		transportErr     *quic.TransportError
		versionErr       *quic.VersionNegotiationError
		opErr            *net.OpError
	)

	switch {
	case errors.As(err, &handshakeTimeout), errors.As(err, &idleTimeout):
		// 握手期间从未收到对端有效响应
		return types.FailurePeerUnreachable
	case errors.As(err, &versionErr):
		return types.FailureProtocolMismatch
	case errors.As(err, &transportErr):
		return classifyCryptoError(transportErr)
	case errors.As(err, &opErr):
		return types.FailurePeerUnreachable
	default:
		return types.FailureUnknown
	}
}

// classifyCryptoError 按 TLS alert 判定失败类型
func classifyCryptoError(te *quic.TransportError) types.HandshakeFailure {
	if !te.ErrorCode.IsCryptoError() {
		return types.FailureUnknown
	}

	alert := uint8(te.ErrorCode - quic.TransportErrorCode(0x100))
	switch alert {
	case alertNoApplicationProtocol, alertProtocolVersion:
		return types.FailureProtocolMismatch
	case alertBadCertificate, alertCertificateUnknown:
		// 对端拒绝了本端证书
		if te.Remote {
			return types.FailureVerificationRejected
		}
	}
	return types.FailureUnknown
}

// alertName 返回 TLS alert 的可读名称（用于日志）
func alertName(te *quic.TransportError) string {
	if te == nil || !te.ErrorCode.IsCryptoError() {
		return ""
	}
	return tls.AlertError(uint8(te.ErrorCode - 0x100)).Error()
}
