package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-quicboot/pkg/types"
)

// DefaultALPN 默认 ALPN 协议标识
const DefaultALPN = "quicboot/1"

// SecurityConfig 安全配置
type SecurityConfig struct {
	// Policy 客户端证书验证策略：permissive 或 anchored
	//
	// 不提供默认值，客户端必须显式选择。permissive 会接受任何证书，
	// 仅用于本地测试。
	Policy string `json:"policy"`

	// PinnedCertFiles anchored 策略使用的 PEM 证书（固定证书或根证书）
	PinnedCertFiles []string `json:"pinned_cert_files,omitempty"`

	// ServerName 客户端声明的服务器名
	ServerName string `json:"server_name"`

	// ALPN 应用层协议协商列表
	ALPN []string `json:"alpn"`
}

// DefaultSecurityConfig 返回默认安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		ServerName: "localhost",
		ALPN:       []string{DefaultALPN},
	}
}

// PolicyKind 返回解析后的策略类型
func (c SecurityConfig) PolicyKind() types.PolicyKind {
	return types.ParsePolicyKind(c.Policy)
}

// Validate 验证安全配置
func (c SecurityConfig) Validate() error {
	// anchored 的固定证书也可在运行时注入，数量在构造策略时检查
	switch c.PolicyKind() {
	case types.PolicyPermissive, types.PolicyAnchored:
	default:
		return fmt.Errorf("policy must be explicitly set to 'permissive' or 'anchored', got %q", c.Policy)
	}
	if c.ServerName == "" {
		return errors.New("server_name is required")
	}
	if len(c.ALPN) == 0 {
		return errors.New("at least one ALPN protocol is required")
	}
	return nil
}
