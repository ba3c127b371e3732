package config

import (
	"fmt"

	"github.com/dep2p/go-quicboot/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug/info/warn/error
	Level string `json:"level"`

	// Format 输出格式：text 或 json
	Format string `json:"format"`

	// File 日志文件路径，空表示 stderr
	File string `json:"file,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, ok := log.ParseLevel(c.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got %q", c.Format)
	}
}
