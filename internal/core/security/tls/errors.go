package tls

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-quicboot/pkg/types"
)

var (
	// ErrInvalidIdentity 身份的证书与私钥无法组成 TLS 证书
	ErrInvalidIdentity = errors.New("tls: invalid identity")

	// ErrNilPolicy 未提供验证策略
	ErrNilPolicy = errors.New("tls: verification policy is required")

	// ErrNoALPN 未提供 ALPN 协议
	ErrNoALPN = errors.New("tls: at least one ALPN protocol is required")

	// ErrUnspecifiedPolicy 未指定策略类型
	ErrUnspecifiedPolicy = errors.New("tls: verification policy must be chosen explicitly")

	// ErrNoPinnedCertificates anchored 策略缺少固定证书
	ErrNoPinnedCertificates = errors.New("tls: anchored policy requires at least one pinned certificate")
)

// RejectionError 策略拒绝对端证书
//
// 由 VerifyConnection 返回，携带完整的验证结果。
type RejectionError struct {
	Policy  string
	Outcome types.Outcome
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("tls: %s policy %s", e.Policy, e.Outcome)
}

// Unwrap 返回拒绝原因对应的哨兵错误
func (e *RejectionError) Unwrap() error {
	return e.Outcome.Reason.Err()
}
