package config

import (
	"errors"
	"net"
	"time"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// ListenAddr 服务端绑定地址
	ListenAddr string `json:"listen_addr"`

	// ClientBindAddr 客户端绑定地址（端口 0 表示临时端口）
	ClientBindAddr string `json:"client_bind_addr"`

	// HandshakeTimeout 握手空闲超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// MaxIdleTimeout 连接空闲超时
	MaxIdleTimeout Duration `json:"max_idle_timeout"`

	// KeepAlivePeriod KeepAlive 间隔，0 表示禁用
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// MaxIncomingStreams 对端可并发打开的双向流数量
	MaxIncomingStreams int64 `json:"max_incoming_streams"`

	// AllowUniStreams 是否允许对端打开单向流
	AllowUniStreams bool `json:"allow_uni_streams"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:         "127.0.0.1:5001",
		ClientBindAddr:     "127.0.0.1:0",
		HandshakeTimeout:   Duration(5 * time.Second),
		MaxIdleTimeout:     Duration(30 * time.Second),
		KeepAlivePeriod:    Duration(10 * time.Second),
		MaxIncomingStreams: 100,
		AllowUniStreams:    false, // 与原部署一致：只接受双向流
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errors.New("listen_addr must be host:port")
	}
	if _, _, err := net.SplitHostPort(c.ClientBindAddr); err != nil {
		return errors.New("client_bind_addr must be host:port")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	if c.MaxIdleTimeout <= 0 {
		return errors.New("max idle timeout must be positive")
	}
	if c.KeepAlivePeriod < 0 {
		return errors.New("keep alive period must not be negative")
	}
	if c.KeepAlivePeriod > 0 && c.KeepAlivePeriod >= c.MaxIdleTimeout {
		return errors.New("keep alive period must be shorter than max idle timeout")
	}
	if c.MaxIncomingStreams <= 0 {
		return errors.New("max incoming streams must be positive")
	}
	return nil
}
