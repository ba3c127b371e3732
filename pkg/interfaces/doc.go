// Package interfaces 定义 go-quicboot 的公共接口
//
// 组件之间通过本包的接口协作，实现位于 internal/core：
//   - identity.go - IdentityStore 身份持久化
//   - security.go - VerificationPolicy 证书验证策略
//
// # 依赖方向
//
//	interfaces → types
//
// 禁止反向依赖。
package interfaces
