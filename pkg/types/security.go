package types

import (
	"crypto/x509"
	"iter"
	"time"
)

// ============================================================================
//                              RejectReason - 拒绝原因
// ============================================================================

// RejectReason 验证策略拒绝对端证书的原因
type RejectReason int

const (
	// ReasonNone 无（接受）
	ReasonNone RejectReason = iota
	// ReasonExpiredCertificate 证书过期或尚未生效
	ReasonExpiredCertificate
	// ReasonNameMismatch 名称不匹配
	ReasonNameMismatch
	// ReasonUnknownIssuer 签发者未知
	ReasonUnknownIssuer
	// ReasonSignatureInvalid 签名无效
	ReasonSignatureInvalid
)

// String 返回拒绝原因的字符串表示
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExpiredCertificate:
		return "expired certificate"
	case ReasonNameMismatch:
		return "name mismatch"
	case ReasonUnknownIssuer:
		return "unknown issuer"
	case ReasonSignatureInvalid:
		return "signature invalid"
	default:
		return "unknown"
	}
}

// Err 返回拒绝原因对应的哨兵错误
func (r RejectReason) Err() error {
	switch r {
	case ReasonExpiredCertificate:
		return ErrExpiredCertificate
	case ReasonNameMismatch:
		return ErrNameMismatch
	case ReasonUnknownIssuer:
		return ErrUnknownIssuer
	case ReasonSignatureInvalid:
		return ErrSignatureInvalid
	default:
		return nil
	}
}

// Failure 返回拒绝原因对应的握手失败类型
func (r RejectReason) Failure() HandshakeFailure {
	if r == ReasonNameMismatch {
		return FailureNameMismatch
	}
	return FailureVerificationRejected
}

// ============================================================================
//                              VerificationInput - 验证输入
// ============================================================================

// VerificationInput 单次握手的证书验证输入
type VerificationInput struct {
	// PeerChain 对端证书链，第一个为叶子证书
	PeerChain []*x509.Certificate

	// ServerName 声明的服务器名（空表示未声明）
	ServerName string

	// SCTs 签名证书时间戳（惰性序列）
	SCTs iter.Seq[[]byte]

	// OCSPResponse OCSP 响应（可能为空）
	OCSPResponse []byte

	// Now 验证时刻
	Now time.Time
}

// Leaf 返回叶子证书，链为空时返回 nil
func (in VerificationInput) Leaf() *x509.Certificate {
	if len(in.PeerChain) == 0 {
		return nil
	}
	return in.PeerChain[0]
}

// HasServerName 是否声明了服务器名
func (in VerificationInput) HasServerName() bool {
	return in.ServerName != ""
}

// ============================================================================
//                              Outcome - 验证结果
// ============================================================================

// Outcome 验证结果：Accepted 或 Rejected(reason)
type Outcome struct {
	// Accepted 是否接受
	Accepted bool

	// Reason 拒绝原因
	Reason RejectReason

	// Detail 补充说明（仅用于日志）
	Detail string
}

// Accept 返回接受结果
func Accept() Outcome {
	return Outcome{Accepted: true}
}

// Reject 返回拒绝结果
func Reject(reason RejectReason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// String 返回结果的字符串表示
func (o Outcome) String() string {
	if o.Accepted {
		return "accepted"
	}
	if o.Detail != "" {
		return "rejected: " + o.Reason.String() + ": " + o.Detail
	}
	return "rejected: " + o.Reason.String()
}
