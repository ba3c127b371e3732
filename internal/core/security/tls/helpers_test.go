package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testCert 测试证书与私钥
type testCert struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

type certParams struct {
	subject   string
	dnsNames  []string
	isCA      bool
	keyID     []byte
	notBefore time.Time
	notAfter  time.Time
}

// newTestCert 生成证书，parent 为 nil 时自签名
func newTestCert(t *testing.T, params certParams, parent *testCert) *testCert {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	if params.notBefore.IsZero() {
		params.notBefore = time.Now().Add(-time.Hour)
	}
	if params.notAfter.IsZero() {
		params.notAfter = time.Now().Add(24 * time.Hour)
	}

	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: params.subject},
		NotBefore:             params.notBefore,
		NotAfter:              params.notAfter,
		DNSNames:              params.dnsNames,
		BasicConstraintsValid: true,
		IsCA:                  params.isCA,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:              x509.KeyUsageDigitalSignature,
		SubjectKeyId:          params.keyID,
	}
	if params.isCA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign
	}

	signerCert, signerKey := tmpl, key
	if parent != nil {
		signerCert, signerKey = parent.cert, parent.key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testCert{cert: cert, key: key}
}
