package quic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-quicboot/config"
	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// Tuning QUIC 传输参数
type Tuning struct {
	// ALPN 应用层协议
	ALPN []string

	// HandshakeIdleTimeout 握手期间无响应的超时
	HandshakeIdleTimeout time.Duration

	// MaxIdleTimeout 连接空闲超时
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod KeepAlive 间隔，0 表示禁用
	KeepAlivePeriod time.Duration

	// MaxIncomingStreams 对端可并发打开的双向流
	MaxIncomingStreams int64

	// AllowUniStreams 是否允许对端打开单向流
	AllowUniStreams bool
}

// DefaultTuning 返回默认传输参数
func DefaultTuning() Tuning {
	return TuningFromConfig(config.DefaultTransportConfig(), config.DefaultSecurityConfig())
}

// TuningFromConfig 从配置构造传输参数
func TuningFromConfig(tc config.TransportConfig, sc config.SecurityConfig) Tuning {
	return Tuning{
		ALPN:                 sc.ALPN,
		HandshakeIdleTimeout: tc.HandshakeTimeout.Duration(),
		MaxIdleTimeout:       tc.MaxIdleTimeout.Duration(),
		KeepAlivePeriod:      tc.KeepAlivePeriod.Duration(),
		MaxIncomingStreams:   tc.MaxIncomingStreams,
		AllowUniStreams:      tc.AllowUniStreams,
	}
}

// quicConfig 构造 quic-go 配置
func (t Tuning) quicConfig() *quic.Config {
	qc := &quic.Config{
		HandshakeIdleTimeout: t.HandshakeIdleTimeout,
		MaxIdleTimeout:       t.MaxIdleTimeout,
		KeepAlivePeriod:      t.KeepAlivePeriod,
		MaxIncomingStreams:   t.MaxIncomingStreams,
	}
	if !t.AllowUniStreams {
		// 负值表示对端完全不能打开单向流
		qc.MaxIncomingUniStreams = -1
	}
	return qc
}

// EndpointConfig 端点角色配置
type EndpointConfig interface {
	// Role 返回端点角色
	Role() types.Role

	endpointConfig()
}

// ServerConfig 服务端配置
type ServerConfig struct {
	TLS       *tls.Config
	Transport *quic.Config
}

// Role 实现 EndpointConfig
func (*ServerConfig) Role() types.Role { return types.RoleServer }

func (*ServerConfig) endpointConfig() {}

// ClientConfig 客户端配置
type ClientConfig struct {
	TLS       *tls.Config
	Transport *quic.Config
	Policy    interfaces.VerificationPolicy
}

// Role 实现 EndpointConfig
func (*ClientConfig) Role() types.Role { return types.RoleClient }

func (*ClientConfig) endpointConfig() {}

// ConfigureServer 由身份和传输参数构造服务端配置
func ConfigureServer(id *types.Identity, tuning Tuning) (*ServerConfig, error) {
	tlsConf, err := sectls.ServerTLSConfig(id, tuning.ALPN)
	if err != nil {
		return nil, err
	}
	return &ServerConfig{TLS: tlsConf, Transport: tuning.quicConfig()}, nil
}

// ConfigureClient 由验证策略和传输参数构造客户端配置
func ConfigureClient(policy interfaces.VerificationPolicy, tuning Tuning, opts ...sectls.ClientOption) (*ClientConfig, error) {
	tlsConf, err := sectls.ClientTLSConfig(policy, tuning.ALPN, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientConfig{TLS: tlsConf, Transport: tuning.quicConfig(), Policy: policy}, nil
}
