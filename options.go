package quicboot

import (
	"errors"

	"go.uber.org/fx"

	"github.com/dep2p/go-quicboot/internal/core/metrics"
	"github.com/dep2p/go-quicboot/internal/protocol/timefmt"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
)

// Option 配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 客户端额外的固定证书（DER）
	pinned [][]byte

	// 身份存储，nil 时按配置使用文件存储
	store interfaces.IdentityStore

	// 指标
	reporter   metrics.Reporter
	prometheus bool

	// 时间服务选项
	timeOpts []timefmt.Option

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

func newOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithPinnedCertificates 追加客户端信任的固定证书（DER）
//
// 仅在 anchored 策略下生效。
func WithPinnedCertificates(der ...[]byte) Option {
	return func(o *options) error {
		for _, d := range der {
			if len(d) == 0 {
				return errors.New("pinned certificate is empty")
			}
		}
		o.pinned = append(o.pinned, der...)
		return nil
	}
}

// WithIdentityStore 设置服务端身份存储
func WithIdentityStore(store interfaces.IdentityStore) Option {
	return func(o *options) error {
		if store == nil {
			return errors.New("identity store is nil")
		}
		o.store = store
		return nil
	}
}

// WithReporter 设置指标记录
func WithReporter(r metrics.Reporter) Option {
	return func(o *options) error {
		o.reporter = r
		return nil
	}
}

// WithPrometheus 启用 Prometheus 指标
//
// 与 WithReporter 同时使用时以 WithReporter 为准。
func WithPrometheus() Option {
	return func(o *options) error {
		o.prometheus = true
		return nil
	}
}

// WithTimeService 设置服务端时间服务选项
func WithTimeService(opts ...timefmt.Option) Option {
	return func(o *options) error {
		o.timeOpts = append(o.timeOpts, opts...)
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
