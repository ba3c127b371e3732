package quic

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/internal/core/metrics"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// ============================================================================
//                              服务端
// ============================================================================

// ServerInput 服务端端点依赖
type ServerInput struct {
	fx.In

	LC       fx.Lifecycle
	Config   *config.Config
	Identity *types.Identity
	Reporter metrics.Reporter `optional:"true"`
}

// ProvideServerEndpoint 绑定服务端端点
func ProvideServerEndpoint(input ServerInput) (*Endpoint, error) {
	cfg := input.Config
	sc, err := ConfigureServer(input.Identity, TuningFromConfig(cfg.Transport, cfg.Security))
	if err != nil {
		return nil, err
	}
	ep, err := BindServer(cfg.Transport.ListenAddr, sc, WithReporter(input.Reporter))
	if err != nil {
		return nil, err
	}
	registerLifecycle(input.LC, ep)
	return ep, nil
}

// ServerModule 返回服务端 fx 模块
func ServerModule() fx.Option {
	return fx.Module("transport.server",
		fx.Provide(ProvideServerEndpoint),
	)
}

// ============================================================================
//                              客户端
// ============================================================================

// ClientInput 客户端端点依赖
type ClientInput struct {
	fx.In

	LC       fx.Lifecycle
	Config   *config.Config
	Policy   interfaces.VerificationPolicy
	Reporter metrics.Reporter `optional:"true"`
}

// ProvideClientEndpoint 绑定客户端端点
func ProvideClientEndpoint(input ClientInput) (*Endpoint, error) {
	cfg := input.Config
	cc, err := ConfigureClient(input.Policy, TuningFromConfig(cfg.Transport, cfg.Security))
	if err != nil {
		return nil, err
	}
	ep, err := BindClient(cfg.Transport.ClientBindAddr, cc, WithReporter(input.Reporter))
	if err != nil {
		return nil, err
	}
	registerLifecycle(input.LC, ep)
	return ep, nil
}

// ClientModule 返回客户端 fx 模块
func ClientModule() fx.Option {
	return fx.Module("transport.client",
		fx.Provide(ProvideClientEndpoint),
	)
}

// registerLifecycle 停止时先排空，超时后强制关闭
//
// 排空截止时间早于停止截止时间，强制关闭在 fx 放弃等待之前完成。
func registerLifecycle(lc fx.Lifecycle, ep *Endpoint) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			drainCtx, cancel := drainContext(ctx)
			defer cancel()
			return ep.Shutdown(drainCtx)
		},
	})
}

// closeReserve 为强制关闭预留的时间上限
const closeReserve = 500 * time.Millisecond

// drainContext 返回截止时间提前的 ctx，预留剩余时间的五分之一（至多 closeReserve）
func drainContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	reserve := max(min(time.Until(deadline)/5, closeReserve), 0)
	return context.WithDeadline(ctx, deadline.Add(-reserve))
}
