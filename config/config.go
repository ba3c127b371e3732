// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Security.Policy = "anchored"
//	cfg.Security.PinnedCertFiles = []string{"server.crt"}
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("quicboot.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是 go-quicboot 的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 证书/私钥生成与持久化
//   - Security: 客户端验证策略与 ALPN
//   - Transport: 本地地址与 QUIC 参数
//   - Log: 日志
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Security 安全配置
	Security SecurityConfig `json:"security"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
//
// 注意：默认配置不选择验证策略，客户端必须显式设置 Security.Policy。
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Security:  DefaultSecurityConfig(),
		Transport: DefaultTransportConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证两端共用的配置
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// ValidateServer 验证服务端所需配置
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// ValidateClient 验证客户端所需配置
//
// 客户端必须显式选择验证策略，不会静默使用默认值。
func (c *Config) ValidateClient() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现在 JSON 中的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 序列化配置为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
