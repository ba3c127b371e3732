package quic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/assert"

	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// TestClassifyTransportError 测试 quic-go 错误分类
func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.HandshakeFailure
	}{
		{"handshake timeout", &quic.HandshakeTimeoutError{}, types.FailurePeerUnreachable},
		{"idle timeout", &quic.IdleTimeoutError{}, types.FailurePeerUnreachable},
		{"version negotiation", &quic.VersionNegotiationError{}, types.FailureProtocolMismatch},
		{"no application protocol", &quic.TransportError{ErrorCode: 0x100 + 120, Remote: true}, types.FailureProtocolMismatch},
		{"protocol version", &quic.TransportError{ErrorCode: 0x100 + 70}, types.FailureProtocolMismatch},
		{"remote bad certificate", &quic.TransportError{ErrorCode: 0x100 + 42, Remote: true}, types.FailureVerificationRejected},
		{"local bad certificate", &quic.TransportError{ErrorCode: 0x100 + 42}, types.FailureUnknown},
		{"non crypto", &quic.TransportError{ErrorCode: quic.ProtocolViolation, Remote: true}, types.FailureUnknown},
		{"socket", &net.OpError{Op: "write", Net: "udp", Err: errors.New("network is unreachable")}, types.FailurePeerUnreachable},
		{"wrapped", fmt.Errorf("dial: %w", &quic.HandshakeTimeoutError{}), types.FailurePeerUnreachable},
		{"other", errors.New("boom"), types.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTransportError(tt.err))
		})
	}
}

// TestNewHandshakeError 测试分类优先级
func TestNewHandshakeError(t *testing.T) {
	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5001}

	t.Run("RecordedRejection", func(t *testing.T) {
		outcome := types.Reject(types.ReasonNameMismatch, "other.test")
		he := newHandshakeError(types.RoleClient, remote,
			&quic.TransportError{ErrorCode: 0x100 + 42}, &outcome, nil)
		assert.Equal(t, types.FailureNameMismatch, he.Failure)
		assert.Equal(t, types.ReasonNameMismatch, he.Reason)
		assert.ErrorIs(t, he, types.ErrNameMismatch)
		assert.ErrorIs(t, he, types.ErrHandshakeFailed)
	})

	t.Run("RejectionInChain", func(t *testing.T) {
		rej := &sectls.RejectionError{
			Policy:  sectls.AnchoredName,
			Outcome: types.Reject(types.ReasonUnknownIssuer, ""),
		}
		he := newHandshakeError(types.RoleClient, remote, fmt.Errorf("handshake: %w", rej), nil, nil)
		assert.Equal(t, types.FailureVerificationRejected, he.Failure)
		assert.ErrorIs(t, he, types.ErrUnknownIssuer)
	})

	t.Run("ContextEnded", func(t *testing.T) {
		he := newHandshakeError(types.RoleServer, nil, context.Canceled, nil, context.DeadlineExceeded)
		assert.Equal(t, types.FailureTimeout, he.Failure)
		assert.ErrorIs(t, he, types.ErrTimeout)
		assert.Nil(t, he.Remote)
	})

	t.Run("Transport", func(t *testing.T) {
		he := newHandshakeError(types.RoleClient, remote, &quic.HandshakeTimeoutError{}, nil, nil)
		assert.Equal(t, types.FailurePeerUnreachable, he.Failure)
		assert.Equal(t, remote, he.Remote)
	})
}

// TestAlertName 测试 alert 名称
func TestAlertName(t *testing.T) {
	assert.Empty(t, alertName(nil))
	assert.Empty(t, alertName(&quic.TransportError{ErrorCode: quic.ProtocolViolation}))
	assert.Contains(t, alertName(&quic.TransportError{ErrorCode: 0x100 + 120}), "no application protocol")
}
