package identity

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// Provide 按配置获取服务端身份
//
// 优先级：LoadExisting 且存储中已有身份 > 新生成。
// 新生成的身份在 Persist 开启时写入存储，写入失败视为错误。
func Provide(cfg config.IdentityConfig, store interfaces.IdentityStore, opts ...GenerateOption) (*types.Identity, error) {
	if cfg.LoadExisting && store != nil {
		id, err := store.Load()
		switch {
		case err == nil:
			logger.Info("已加载现有身份", "hostnames", id.Hostnames)
			return id, nil
		case errors.Is(err, ErrIdentityNotFound):
			logger.Debug("存储中无身份，重新生成")
		default:
			return nil, fmt.Errorf("加载身份失败: %w", err)
		}
	}

	opts = append([]GenerateOption{WithValidity(cfg.Validity.Duration())}, opts...)
	id, err := Generate(cfg.Hostnames, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Persist && store != nil {
		if err := store.Save(id); err != nil {
			return nil, err
		}
	}
	return id, nil
}
