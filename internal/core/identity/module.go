package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config

	// Store 身份存储（可选，默认使用配置中的文件路径）
	Store interfaces.IdentityStore `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Identity *types.Identity
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := input.Config.Identity

	store := input.Store
	if store == nil && (cfg.Persist || cfg.LoadExisting) {
		store = NewFileStore(cfg.CertFile, cfg.KeyFile)
	}

	id, err := Provide(cfg, store)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Identity: id}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}
