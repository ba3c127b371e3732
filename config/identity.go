package config

import (
	"errors"
	"time"
)

// IdentityConfig 服务端身份配置
type IdentityConfig struct {
	// Hostnames 证书绑定的主机名（至少一个）
	Hostnames []string `json:"hostnames"`

	// CertFile PEM 证书文件路径
	CertFile string `json:"cert_file"`

	// KeyFile PEM 私钥文件路径
	KeyFile string `json:"key_file"`

	// Validity 自签名证书有效期
	Validity Duration `json:"validity"`

	// Persist 生成后是否写入 CertFile/KeyFile
	Persist bool `json:"persist"`

	// LoadExisting 优先从 CertFile/KeyFile 加载已有身份
	LoadExisting bool `json:"load_existing"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		Hostnames: []string{"localhost"},
		CertFile:  "server.crt",
		KeyFile:   "server.key",
		Validity:  Duration(365 * 24 * time.Hour),
		Persist:   true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if len(c.Hostnames) == 0 {
		return errors.New("at least one hostname is required")
	}
	if c.Validity <= 0 {
		return errors.New("validity must be positive")
	}
	if (c.Persist || c.LoadExisting) && (c.CertFile == "" || c.KeyFile == "") {
		return errors.New("cert_file and key_file are required when persist or load_existing is set")
	}
	if c.CertFile != "" && c.CertFile == c.KeyFile {
		return errors.New("cert_file and key_file must differ")
	}
	return nil
}
