package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-quicboot/pkg/types"
)

func TestPrometheus_Handshakes(t *testing.T) {
	m := NewPrometheus()

	okBefore := testutil.ToFloat64(handshakesCounter.WithLabelValues("client", "success"))
	failBefore := testutil.ToFloat64(handshakesCounter.WithLabelValues("server", "peer unreachable"))

	m.HandshakeSucceeded(types.RoleClient, 5*time.Millisecond)
	m.HandshakeFailed(types.RoleServer, types.FailurePeerUnreachable, time.Second)
	m.HandshakeFailed(types.RoleServer, types.FailurePeerUnreachable, time.Second)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(handshakesCounter.WithLabelValues("client", "success")))
	assert.Equal(t, failBefore+2, testutil.ToFloat64(handshakesCounter.WithLabelValues("server", "peer unreachable")))
}

func TestPrometheus_Rejections(t *testing.T) {
	m := NewPrometheus()

	before := testutil.ToFloat64(rejectionsCounter.WithLabelValues("unknown issuer"))
	m.VerificationRejected(types.ReasonUnknownIssuer)
	assert.Equal(t, before+1, testutil.ToFloat64(rejectionsCounter.WithLabelValues("unknown issuer")))
}

func TestPrometheus_ActiveConnections(t *testing.T) {
	m := NewPrometheus()
	gauge := activeConnections.WithLabelValues("server")

	before := testutil.ToFloat64(gauge)
	m.ConnectionOpened(types.RoleServer)
	m.ConnectionOpened(types.RoleServer)
	assert.Equal(t, before+2, testutil.ToFloat64(gauge))

	m.ConnectionClosed(types.RoleServer)
	assert.Equal(t, before+1, testutil.ToFloat64(gauge))
}

func TestPrometheus_StreamBytes(t *testing.T) {
	m := NewPrometheus()
	counter := streamBytesCounter.WithLabelValues("out")

	before := testutil.ToFloat64(counter)
	m.StreamBytes(Outbound, 42)
	m.StreamBytes(Outbound, 0)
	assert.Equal(t, before+42, testutil.ToFloat64(counter))
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	assert.NotPanics(t, func() {
		r.HandshakeSucceeded(types.RoleClient, 0)
		r.HandshakeFailed(types.RoleClient, types.FailureTimeout, 0)
		r.VerificationRejected(types.ReasonExpiredCertificate)
		r.ConnectionOpened(types.RoleClient)
		r.ConnectionClosed(types.RoleClient)
		r.StreamBytes(Inbound, 1)
	})
}
