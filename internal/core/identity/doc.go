// Package identity 实现服务端传输层身份的生成、加载与持久化
//
// 身份由 ECDSA P-256 私钥和绑定一组主机名的自签名 X.509 证书组成：
//
//	id, err := identity.Generate([]string{"localhost"})
//	store := identity.NewFileStore("server.crt", "server.key")
//	err = store.Save(id)
//
// 主机名使用 golang.org/x/net/idna 校验，IP 字面量作为 IP SAN 写入证书。
// 私钥以 PKCS#8 格式编码（PEM 类型 PRIVATE KEY）。
package identity
