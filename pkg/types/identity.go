package types

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
)

// Identity 服务端传输层身份
//
// 自签名证书与对应私钥，每个服务端生命周期创建一次，创建后不可修改。
type Identity struct {
	// CertDER 证书 DER 编码
	CertDER []byte

	// CertPEM 证书 PEM 编码（CERTIFICATE）
	CertPEM []byte

	// KeyDER 私钥 PKCS#8 DER 编码
	KeyDER []byte

	// KeyPEM 私钥 PEM 编码（PRIVATE KEY）
	KeyPEM []byte

	// Hostnames 证书绑定的主机名
	Hostnames []string

	// Leaf 解析后的证书
	Leaf *x509.Certificate

	// PrivateKey 解析后的私钥
	PrivateKey crypto.Signer
}

// TLSCertificate 返回用于 TLS 配置的证书
func (id *Identity) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{id.CertDER},
		PrivateKey:  id.PrivateKey,
		Leaf:        id.Leaf,
	}
}
