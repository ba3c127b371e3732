package tls

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// AnchoredName Anchored 策略名称
const AnchoredName = "anchored"

var _ interfaces.VerificationPolicy = (*Anchored)(nil)

// Anchored 基于固定信任材料的验证策略
//
// 叶子证书与某个固定证书完全相同时，只检查有效期和名称；
// 否则要求证书链能验证到固定证书组成的根证书池。
type Anchored struct {
	roots  *x509.CertPool
	pinned []*x509.Certificate
	clock  clock.Clock
}

// AnchoredOption Anchored 策略选项
type AnchoredOption func(*Anchored)

// WithPolicyClock 设置验证时钟
//
// 仅在 VerificationInput.Now 为零值时使用。
func WithPolicyClock(c clock.Clock) AnchoredOption {
	return func(a *Anchored) {
		if c != nil {
			a.clock = c
		}
	}
}

// NewAnchored 从 DER 编码的证书创建 Anchored 策略
func NewAnchored(pinnedDER [][]byte, opts ...AnchoredOption) (*Anchored, error) {
	if len(pinnedDER) == 0 {
		return nil, ErrNoPinnedCertificates
	}

	a := &Anchored{
		roots: x509.NewCertPool(),
		clock: clock.New(),
	}
	for i, der := range pinnedDER {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("tls: parse pinned certificate %d: %w", i, err)
		}
		a.roots.AddCert(cert)
		a.pinned = append(a.pinned, cert)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// LoadPinnedCertificates 从 PEM 文件读取全部证书（DER）
func LoadPinnedCertificates(paths ...string) ([][]byte, error) {
	var out [][]byte
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("tls: read pinned certificate: %w", err)
		}
		n := 0
		for {
			var block *pem.Block
			block, data = pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" {
				continue
			}
			out = append(out, block.Bytes)
			n++
		}
		if n == 0 {
			return nil, fmt.Errorf("tls: no certificate found in %s", path)
		}
	}
	return out, nil
}

// LoadAnchoredFromPEMFiles 从 PEM 文件创建 Anchored 策略
func LoadAnchoredFromPEMFiles(paths []string, opts ...AnchoredOption) (*Anchored, error) {
	pinned, err := LoadPinnedCertificates(paths...)
	if err != nil {
		return nil, err
	}
	return NewAnchored(pinned, opts...)
}

// Name 实现 VerificationPolicy
func (a *Anchored) Name() string { return AnchoredName }

// Verify 实现 VerificationPolicy
func (a *Anchored) Verify(in types.VerificationInput) types.Outcome {
	leaf := in.Leaf()
	if leaf == nil {
		return types.Reject(types.ReasonUnknownIssuer, "no peer certificate")
	}

	now := in.Now
	if now.IsZero() {
		now = a.clock.Now()
	}

	if a.isPinned(leaf) {
		if now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
			return types.Reject(types.ReasonExpiredCertificate,
				fmt.Sprintf("valid %s to %s", leaf.NotBefore.UTC(), leaf.NotAfter.UTC()))
		}
		if in.HasServerName() {
			if err := leaf.VerifyHostname(in.ServerName); err != nil {
				return types.Reject(types.ReasonNameMismatch, err.Error())
			}
		}
		return types.Accept()
	}

	intermediates := x509.NewCertPool()
	for _, cert := range in.PeerChain[1:] {
		intermediates.AddCert(cert)
	}

	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         a.roots,
		Intermediates: intermediates,
		DNSName:       in.ServerName,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	if err == nil {
		return types.Accept()
	}
	return types.Reject(a.classify(leaf, err), err.Error())
}

func (a *Anchored) isPinned(leaf *x509.Certificate) bool {
	for _, p := range a.pinned {
		if bytes.Equal(p.Raw, leaf.Raw) {
			return true
		}
	}
	return false
}

// classify 将 x509 验证错误映射为拒绝原因
func (a *Anchored) classify(leaf *x509.Certificate, err error) types.RejectReason {
	var (
		hostErr      x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		authorityErr x509.UnknownAuthorityError
		algErr       x509.InsecureAlgorithmError
	)
	switch {
	case errors.As(err, &hostErr):
		return types.ReasonNameMismatch
	case errors.As(err, &invalidErr):
		if invalidErr.Reason == x509.Expired {
			return types.ReasonExpiredCertificate
		}
		// 其余原因（NotAuthorizedToSign、NameMismatch、IncompatibleUsage 等）
		// 均表示无法构造到固定证书的有效链
		return types.ReasonUnknownIssuer
	case errors.As(err, &authorityErr):
		if a.forgedIssuer(leaf) {
			return types.ReasonSignatureInvalid
		}
		return types.ReasonUnknownIssuer
	case errors.As(err, &algErr):
		return types.ReasonSignatureInvalid
	default:
		return types.ReasonUnknownIssuer
	}
}

// forgedIssuer 判断 leaf 是否声称由某个固定 CA 签发但签名不成立
//
// 候选必须是 CA，名称一致，且双方都带密钥标识时标识一致。
// 自签名的 leaf 不属于这种情况。
func (a *Anchored) forgedIssuer(leaf *x509.Certificate) bool {
	if leaf.CheckSignature(leaf.SignatureAlgorithm, leaf.RawTBSCertificate, leaf.Signature) == nil {
		return false
	}
	for _, p := range a.pinned {
		if !p.IsCA || !p.BasicConstraintsValid {
			continue
		}
		if !bytes.Equal(p.RawSubject, leaf.RawIssuer) {
			continue
		}
		if len(p.SubjectKeyId) > 0 && len(leaf.AuthorityKeyId) > 0 &&
			!bytes.Equal(p.SubjectKeyId, leaf.AuthorityKeyId) {
			continue
		}
		if leaf.CheckSignatureFrom(p) != nil {
			return true
		}
	}
	return false
}
