package tls

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var logger = log.Logger("core/security/tls")

// PermissiveName Permissive 策略名称
const PermissiveName = "permissive-INSECURE"

var _ interfaces.VerificationPolicy = Permissive{}

// Permissive 接受任何证书的验证策略
//
// 不安全：不校验签发者、有效期和名称，仅用于本地测试。
// 每次调用都会以 warn 级别记录服务器名与证书链摘要。
type Permissive struct{}

// Name 实现 VerificationPolicy
func (Permissive) Name() string { return PermissiveName }

// Verify 实现 VerificationPolicy，总是接受
func (Permissive) Verify(in types.VerificationInput) types.Outcome {
	logger.Warn("INSECURE: 接受未验证的对端证书",
		"serverName", in.ServerName,
		"chain", describeChain(in))
	return types.Accept()
}

// describeChain 返回证书链的主题与 SHA-256 指纹
func describeChain(in types.VerificationInput) []string {
	out := make([]string, 0, len(in.PeerChain))
	for _, cert := range in.PeerChain {
		sum := sha256.Sum256(cert.Raw)
		out = append(out, cert.Subject.String()+" sha256:"+hex.EncodeToString(sum[:]))
	}
	return out
}
