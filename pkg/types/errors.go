// Package types 定义 go-quicboot 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
	"net"
)

// ============================================================================
//                              端点相关错误
// ============================================================================

var (
	// ErrAddressInUse 本地地址已被占用
	ErrAddressInUse = errors.New("address in use")

	// ErrBindPermissionDenied 无权限绑定本地地址
	ErrBindPermissionDenied = errors.New("bind permission denied")

	// ErrIdleWaitInterrupted 等待端点空闲时被中断
	ErrIdleWaitInterrupted = errors.New("idle wait interrupted")

	// ErrEndpointDraining 端点正在排空，不再接受新连接
	ErrEndpointDraining = errors.New("endpoint draining")

	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("endpoint closed")

	// ErrWrongRole 端点角色不支持该操作
	ErrWrongRole = errors.New("operation not supported by endpoint role")
)

// ============================================================================
//                              身份相关错误
// ============================================================================

var (
	// ErrCertificateGenerationFailed 证书生成失败
	ErrCertificateGenerationFailed = errors.New("certificate generation failed")

	// ErrCertificatePersistFailed 证书持久化失败
	ErrCertificatePersistFailed = errors.New("certificate persist failed")
)

// ============================================================================
//                              握手相关错误
// ============================================================================

var (
	// ErrHandshakeFailed 握手失败（所有 HandshakeError 均匹配）
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrNameMismatch 证书名称与声明的服务器名不匹配
	ErrNameMismatch = errors.New("name mismatch")

	// ErrVerificationRejected 验证策略拒绝了对端证书
	ErrVerificationRejected = errors.New("verification rejected")

	// ErrProtocolMismatch 协议版本或 ALPN 不匹配
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrPeerUnreachable 对端不可达
	ErrPeerUnreachable = errors.New("peer unreachable")

	// ErrTimeout 握手超时
	ErrTimeout = errors.New("handshake timeout")
)

// 拒绝原因错误
var (
	// ErrExpiredCertificate 证书已过期或尚未生效
	ErrExpiredCertificate = errors.New("expired certificate")

	// ErrUnknownIssuer 证书签发者不受信任
	ErrUnknownIssuer = errors.New("unknown issuer")

	// ErrSignatureInvalid 证书签名无效
	ErrSignatureInvalid = errors.New("signature invalid")
)

// ============================================================================
//                              HandshakeError
// ============================================================================

// HandshakeError 单个连接的握手失败
//
// errors.Is 可匹配 ErrHandshakeFailed、失败类型对应的错误
// （如 ErrPeerUnreachable）以及拒绝原因对应的错误（如 ErrUnknownIssuer）。
type HandshakeError struct {
	// Role 发生失败的一端
	Role Role

	// Failure 失败类型
	Failure HandshakeFailure

	// Reason 验证策略给出的拒绝原因（仅 VerificationRejected / NameMismatch）
	Reason RejectReason

	// Remote 对端地址（可能为 nil）
	Remote net.Addr

	// Err 底层错误
	Err error
}

// Error 实现 error 接口
func (e *HandshakeError) Error() string {
	msg := fmt.Sprintf("%s handshake failed: %s", e.Role, e.Failure)
	if e.Reason != ReasonNone {
		msg += " (" + e.Reason.String() + ")"
	}
	if e.Remote != nil {
		msg += " remote=" + e.Remote.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 返回底层错误
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Is 匹配握手相关的哨兵错误
func (e *HandshakeError) Is(target error) bool {
	if target == ErrHandshakeFailed {
		return true
	}
	if target == e.Failure.Err() {
		return true
	}
	return e.Reason != ReasonNone && target == e.Reason.Err()
}
