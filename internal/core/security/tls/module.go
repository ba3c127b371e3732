package tls

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config

	// PinnedDER 额外的固定证书（可选，例如同进程服务端的证书）
	PinnedDER [][]byte `name:"pinned_certs" optional:"true"`
}

// ProvidePolicy 按配置提供验证策略
func ProvidePolicy(input ModuleInput) (interfaces.VerificationPolicy, error) {
	return PolicyFromConfig(input.Config.Security, input.PinnedDER...)
}

// Module 返回 fx 模块配置
//
// 只有客户端会请求 VerificationPolicy，服务端应用不会触发策略构造。
func Module() fx.Option {
	return fx.Module("security",
		fx.Provide(ProvidePolicy),
	)
}
