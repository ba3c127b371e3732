package interfaces

import "github.com/dep2p/go-quicboot/pkg/types"

// VerificationPolicy 客户端证书验证策略
//
// 每次握手调用一次 Verify，结果只影响本次握手。
// 实现必须可并发调用。
type VerificationPolicy interface {
	// Name 返回策略名称（用于日志）
	Name() string

	// Verify 对一次握手的对端证书做出决定
	Verify(in types.VerificationInput) types.Outcome
}

// PolicyFunc 将函数适配为 VerificationPolicy
type PolicyFunc func(in types.VerificationInput) types.Outcome

// Name 实现 VerificationPolicy
func (f PolicyFunc) Name() string { return "func" }

// Verify 实现 VerificationPolicy
func (f PolicyFunc) Verify(in types.VerificationInput) types.Outcome { return f(in) }
