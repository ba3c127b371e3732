package tls

import (
	"crypto/tls"
	"slices"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// InputFromState 从 TLS 连接状态构造验证输入
func InputFromState(cs tls.ConnectionState, clk clock.Clock) types.VerificationInput {
	return types.VerificationInput{
		PeerChain:    cs.PeerCertificates,
		ServerName:   cs.ServerName,
		SCTs:         slices.Values(cs.SignedCertificateTimestamps),
		OCSPResponse: cs.OCSPResponse,
		Now:          clk.Now(),
	}
}

// VerifyConnection 返回交由策略裁决的 tls.Config.VerifyConnection 回调
//
// 拒绝时返回 *RejectionError。
func VerifyConnection(policy interfaces.VerificationPolicy, clk clock.Clock) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		in := InputFromState(cs, clk)
		outcome := policy.Verify(in)
		if outcome.Accepted {
			return nil
		}

		logger.Debug("策略拒绝对端证书",
			"policy", policy.Name(),
			"serverName", in.ServerName,
			"reason", outcome.Reason.String(),
			"detail", outcome.Detail)
		return &RejectionError{Policy: policy.Name(), Outcome: outcome}
	}
}
