// Package tls 实现证书验证策略与 TLS 配置
//
// # 验证策略
//
//   - Permissive: 接受任何证书，不安全，仅用于本地测试
//   - Anchored: 基于固定证书或根证书池的验证
//
// 策略必须显式选择（NewPolicy），不会静默使用默认值。
//
// # TLS 配置
//
// 服务端使用身份证书，不要求客户端证书；客户端关闭系统信任库查询，
// 每次握手通过 VerifyConnection 交由策略裁决：
//
//	policy, err := tls.NewPolicy(types.PolicyAnchored, [][]byte{id.CertDER})
//	conf, err := tls.ClientTLSConfig(policy, []string{"quicboot/1"})
//
// 策略拒绝时 VerifyConnection 返回 *RejectionError，握手以 TLS alert 终止。
package tls
