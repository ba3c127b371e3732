// Package interfaces 定义 go-quicboot 公共接口
//
// 本文件定义 IdentityStore 接口，负责身份的持久化。
package interfaces

import "github.com/dep2p/go-quicboot/pkg/types"

// IdentityStore 身份存储接口
//
// 路径等存储位置由实现方在构造时注入。
type IdentityStore interface {
	// Save 保存身份，已存在时覆盖
	Save(id *types.Identity) error

	// Load 加载身份
	Load() (*types.Identity, error)
}
