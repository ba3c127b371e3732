package quicboot

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/internal/core/metrics"
	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	qtransport "github.com/dep2p/go-quicboot/internal/core/transport/quic"
	"github.com/dep2p/go-quicboot/internal/protocol/timefmt"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var fxLogger = log.Logger("quicboot/fx")

// serverComponents 服务端组件注入
type serverComponents struct {
	fx.In

	Endpoint *qtransport.Endpoint
	Identity *types.Identity
	Service  *timefmt.Service
}

// clientComponents 客户端组件注入
type clientComponents struct {
	fx.In

	Endpoint *qtransport.Endpoint
	Policy   interfaces.VerificationPolicy
	Reporter metrics.Reporter `optional:"true"`
}

// timeServiceInput 时间服务依赖
type timeServiceInput struct {
	fx.In

	Reporter metrics.Reporter `optional:"true"`
}

// buildServerApp 构建服务端 Fx 应用
//
// 加载顺序：配置 → 指标 → Identity → Transport(server) → 时间服务
func buildServerApp(cfg *config.Config, o *options, s *Server) (*fx.App, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := baseModules(cfg, o)
	if o.store != nil {
		store := o.store
		modules = append(modules, fx.Provide(func() interfaces.IdentityStore { return store }))
	}
	modules = append(modules,
		identity.Module(),
		qtransport.ServerModule(),
		fx.Provide(provideTimeService(o.timeOpts)),
	)
	modules = append(modules, o.fxOptions...)
	modules = append(modules, fx.Invoke(func(c serverComponents) {
		s.endpoint = c.Endpoint
		s.identity = c.Identity
		s.service = c.Service
	}))

	return newApp(modules)
}

// buildClientApp 构建客户端 Fx 应用
//
// 加载顺序：配置 → 指标 → Security(policy) → Transport(client)
func buildClientApp(cfg *config.Config, o *options, c *Client) (*fx.App, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := baseModules(cfg, o)
	if len(o.pinned) > 0 {
		pinned := o.pinned
		modules = append(modules, fx.Provide(fx.Annotate(
			func() [][]byte { return pinned },
			fx.ResultTags(`name:"pinned_certs"`),
		)))
	}
	modules = append(modules,
		sectls.Module(),
		qtransport.ClientModule(),
	)
	modules = append(modules, o.fxOptions...)
	modules = append(modules, fx.Invoke(func(in clientComponents) {
		c.endpoint = in.Endpoint
		c.policy = in.Policy
		if in.Reporter != nil {
			c.reporter = in.Reporter
		}
	}))

	return newApp(modules)
}

// baseModules 两种角色共用的模块
func baseModules(cfg *config.Config, o *options) []fx.Option {
	modules := []fx.Option{
		fx.Supply(cfg),
		fxEventLogger(cfg),
	}

	switch {
	case o.reporter != nil:
		r := o.reporter
		modules = append(modules, fx.Provide(func() metrics.Reporter { return r }))
	case o.prometheus:
		modules = append(modules, metrics.Module)
	}
	return modules
}

func newApp(modules []fx.Option) (*fx.App, error) {
	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		fxLogger.Error("组装应用失败", "err", err)
		return nil, err
	}
	return app, nil
}

// provideTimeService 提供时间服务，指标记录器可选
func provideTimeService(opts []timefmt.Option) func(timeServiceInput) *timefmt.Service {
	return func(in timeServiceInput) *timefmt.Service {
		all := append([]timefmt.Option{timefmt.WithReporter(in.Reporter)}, opts...)
		return timefmt.NewService(all...)
	}
}

// fxEventLogger Fx 事件日志
//
// debug 级别时输出到 zap 开发 logger，否则丢弃。
func fxEventLogger(cfg *config.Config) fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		if cfg.Log.Level == "debug" {
			if l, err := zap.NewDevelopment(); err == nil {
				return &fxevent.ZapLogger{Logger: l}
			}
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	})
}
