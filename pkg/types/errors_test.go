package types

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandshakeError_Is(t *testing.T) {
	err := &HandshakeError{
		Role:    RoleClient,
		Failure: FailureVerificationRejected,
		Reason:  ReasonUnknownIssuer,
	}

	assert.ErrorIs(t, err, ErrHandshakeFailed)
	assert.ErrorIs(t, err, ErrVerificationRejected)
	assert.ErrorIs(t, err, ErrUnknownIssuer)
	assert.NotErrorIs(t, err, ErrPeerUnreachable)
	assert.NotErrorIs(t, err, ErrExpiredCertificate)
}

func TestHandshakeError_Wrapped(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("connect: %w", &HandshakeError{
		Role:    RoleClient,
		Failure: FailurePeerUnreachable,
		Err:     cause,
	})

	assert.ErrorIs(t, err, ErrPeerUnreachable)
	assert.ErrorIs(t, err, cause)

	var hsErr *HandshakeError
	if assert.ErrorAs(t, err, &hsErr) {
		assert.Equal(t, FailurePeerUnreachable, hsErr.Failure)
		assert.Equal(t, ReasonNone, hsErr.Reason)
	}
}

func TestHandshakeError_Message(t *testing.T) {
	err := &HandshakeError{
		Role:    RoleServer,
		Failure: FailureNameMismatch,
		Reason:  ReasonNameMismatch,
		Remote:  &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5001},
	}

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "server handshake failed: name mismatch"))
	assert.Contains(t, msg, "remote=127.0.0.1:5001")
}

func TestOutcome(t *testing.T) {
	assert.True(t, Accept().Accepted)
	assert.Equal(t, "accepted", Accept().String())

	o := Reject(ReasonExpiredCertificate, "NotAfter passed")
	assert.False(t, o.Accepted)
	assert.Equal(t, "rejected: expired certificate: NotAfter passed", o.String())
	assert.Equal(t, FailureVerificationRejected, o.Reason.Failure())
	assert.Equal(t, FailureNameMismatch, ReasonNameMismatch.Failure())
}
