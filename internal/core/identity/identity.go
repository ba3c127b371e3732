package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quicboot/pkg/lib/log"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var logger = log.Logger("core/identity")

// PEM 类型常量
const (
	pemTypeCertificate = "CERTIFICATE"
	pemTypePrivateKey  = "PRIVATE KEY"
)

const (
	// DefaultValidity 默认证书有效期
	DefaultValidity = 365 * 24 * time.Hour

	// clockSkew NotBefore 提前量，容忍时钟偏差
	clockSkew = time.Hour
)

// ============================================================================
//                              生成选项
// ============================================================================

type generateOptions struct {
	validity time.Duration
	clock    clock.Clock
}

// GenerateOption 身份生成选项
type GenerateOption func(*generateOptions)

// WithValidity 设置证书有效期
func WithValidity(d time.Duration) GenerateOption {
	return func(o *generateOptions) {
		if d > 0 {
			o.validity = d
		}
	}
}

// WithClock 设置时钟（用于测试）
func WithClock(c clock.Clock) GenerateOption {
	return func(o *generateOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// ============================================================================
//                              生成与加载
// ============================================================================

// Generate 为一组主机名生成自签名身份
//
// 所有主机名写入证书 SAN，重复项合并。
// 失败时返回的错误匹配 types.ErrCertificateGenerationFailed。
func Generate(hostnames []string, opts ...GenerateOption) (*types.Identity, error) {
	o := generateOptions{validity: DefaultValidity, clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	dnsNames, ips, err := sanitizeHostnames(hostnames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrCertificateGenerationFailed, err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generate key: %w", types.ErrCertificateGenerationFailed, err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("%w: serial number: %w", types.ErrCertificateGenerationFailed, err)
	}

	commonName := hostnames[0]
	if len(dnsNames) > 0 {
		commonName = dnsNames[0]
	}

	now := o.clock.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-clockSkew),
		NotAfter:              now.Add(o.validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ips,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("%w: create certificate: %w", types.ErrCertificateGenerationFailed, err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: encode key: %w", types.ErrCertificateGenerationFailed, err)
	}

	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("%w: parse certificate: %w", types.ErrCertificateGenerationFailed, err)
	}

	id := &types.Identity{
		CertDER:    certDER,
		CertPEM:    pem.EncodeToMemory(&pem.Block{Type: pemTypeCertificate, Bytes: certDER}),
		KeyDER:     keyDER,
		KeyPEM:     pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: keyDER}),
		Hostnames:  hostnamesOf(leaf),
		Leaf:       leaf,
		PrivateKey: key,
	}

	logger.Debug("身份已生成",
		"hostnames", id.Hostnames,
		"notAfter", leaf.NotAfter.Format(time.RFC3339))
	return id, nil
}

// FromPEM 从 PEM 数据重建身份
//
// 校验私钥与证书是否匹配。
func FromPEM(certPEM, keyPEM []byte) (*types.Identity, error) {
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil || certBlock.Type != pemTypeCertificate {
		return nil, fmt.Errorf("%w: certificate", ErrInvalidPEM)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, fmt.Errorf("%w: private key", ErrInvalidPEM)
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyPairMismatch, err)
	}

	leaf, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	signer, ok := pair.PrivateKey.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported private key type %T", ErrInvalidPEM, pair.PrivateKey)
	}

	return &types.Identity{
		CertDER:    certBlock.Bytes,
		CertPEM:    certPEM,
		KeyDER:     keyBlock.Bytes,
		KeyPEM:     keyPEM,
		Hostnames:  hostnamesOf(leaf),
		Leaf:       leaf,
		PrivateKey: signer,
	}, nil
}

// hostnamesOf 返回证书中的全部主机名（DNS 名在前）
func hostnamesOf(cert *x509.Certificate) []string {
	names := make([]string, 0, len(cert.DNSNames)+len(cert.IPAddresses))
	names = append(names, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		names = append(names, ip.String())
	}
	return names
}
