package quicboot

import (
	"errors"

	"github.com/dep2p/go-quicboot/internal/protocol/timefmt"
)

// 公共错误定义
var (
	// ErrNotStarted 尚未启动
	ErrNotStarted = errors.New("not started")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("already started")

	// ErrClosed 已关闭
	ErrClosed = errors.New("closed")

	// ErrNilConfig 未提供配置
	ErrNilConfig = errors.New("config is required")

	// ErrRemoteFormat 服务端拒绝了时间格式
	ErrRemoteFormat = timefmt.ErrRemote
)
