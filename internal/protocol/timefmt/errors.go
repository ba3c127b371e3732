package timefmt

import "errors"

var (
	// ErrUnsupportedDirective 不支持的格式指令
	ErrUnsupportedDirective = errors.New("timefmt: unsupported directive")

	// ErrEmptyFormat 格式为空
	ErrEmptyFormat = errors.New("timefmt: empty format")

	// ErrInvalidMessage 无效的消息
	ErrInvalidMessage = errors.New("timefmt: invalid message")

	// ErrRemote 服务端返回错误
	ErrRemote = errors.New("timefmt: remote error")
)
