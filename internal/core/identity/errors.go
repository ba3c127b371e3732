package identity

import "errors"

var (
	// ErrInvalidHostname 主机名无效
	ErrInvalidHostname = errors.New("invalid hostname")

	// ErrNoHostnames 未提供主机名
	ErrNoHostnames = errors.New("at least one hostname is required")

	// ErrIdentityNotFound 存储中没有身份
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInvalidPEM 无效的 PEM 数据
	ErrInvalidPEM = errors.New("invalid PEM data")

	// ErrKeyPairMismatch 私钥与证书不匹配
	ErrKeyPairMismatch = errors.New("key pair mismatch")
)
