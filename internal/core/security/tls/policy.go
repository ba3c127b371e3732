package tls

import (
	"fmt"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// NewPolicy 按类型创建验证策略
//
// PolicyUnspecified 返回 ErrUnspecifiedPolicy。
func NewPolicy(kind types.PolicyKind, pinned [][]byte, opts ...AnchoredOption) (interfaces.VerificationPolicy, error) {
	switch kind {
	case types.PolicyPermissive:
		logger.Warn("使用 permissive 验证策略：对端证书不会被校验")
		return Permissive{}, nil
	case types.PolicyAnchored:
		return NewAnchored(pinned, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnspecifiedPolicy, kind)
	}
}

// PolicyFromConfig 从安全配置创建验证策略
//
// extraPinned 追加到配置文件中的固定证书之后。
func PolicyFromConfig(cfg config.SecurityConfig, extraPinned ...[]byte) (interfaces.VerificationPolicy, error) {
	var pinned [][]byte
	if cfg.PolicyKind() == types.PolicyAnchored && len(cfg.PinnedCertFiles) > 0 {
		loaded, err := LoadPinnedCertificates(cfg.PinnedCertFiles...)
		if err != nil {
			return nil, err
		}
		pinned = loaded
	}
	pinned = append(pinned, extraPinned...)
	return NewPolicy(cfg.PolicyKind(), pinned)
}
