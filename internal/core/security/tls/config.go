package tls

import (
	"crypto/tls"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// ServerTLSConfig 构建服务端 TLS 配置
//
// 使用身份证书，TLS 1.3，不请求客户端证书。
func ServerTLSConfig(id *types.Identity, alpn []string) (*tls.Config, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: nil identity", ErrInvalidIdentity)
	}
	if len(alpn) == 0 {
		return nil, ErrNoALPN
	}

	// 重新组合一次，拒绝不匹配或损坏的证书/私钥
	cert, err := tls.X509KeyPair(id.CertPEM, id.KeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	cert.Leaf = id.Leaf

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		ClientAuth:   tls.NoClientCert,
		NextProtos:   append([]string(nil), alpn...),
	}, nil
}

// ClientOption 客户端 TLS 配置选项
type ClientOption func(*clientOptions)

type clientOptions struct {
	clock clock.Clock
}

// WithClock 设置验证输入使用的时钟
func WithClock(c clock.Clock) ClientOption {
	return func(o *clientOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// ClientTLSConfig 构建客户端 TLS 配置
//
// 关闭标准信任库查询，每次握手交由 policy 裁决；不提供客户端证书。
// ServerName 由连接发起方按次设置。
func ClientTLSConfig(policy interfaces.VerificationPolicy, alpn []string, opts ...ClientOption) (*tls.Config, error) {
	if policy == nil {
		return nil, ErrNilPolicy
	}
	if len(alpn) == 0 {
		return nil, ErrNoALPN
	}

	o := clientOptions{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		NextProtos: append([]string(nil), alpn...),
		// 信任决策完全由 VerifyConnection 中的策略做出
		InsecureSkipVerify: true,
		VerifyConnection:   VerifyConnection(policy, o.clock),
	}, nil
}
