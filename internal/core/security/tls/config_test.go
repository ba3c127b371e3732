package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

var testALPN = []string{"quicboot/1"}

// TestServerTLSConfig 测试服务端配置
func TestServerTLSConfig(t *testing.T) {
	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)

	conf, err := ServerTLSConfig(id, testALPN)
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), conf.MinVersion)
	assert.Equal(t, tls.NoClientCert, conf.ClientAuth)
	assert.Equal(t, testALPN, conf.NextProtos)
	require.Len(t, conf.Certificates, 1)
	assert.Equal(t, id.CertDER, conf.Certificates[0].Certificate[0])
}

// TestServerTLSConfig_InvalidIdentity 测试不匹配的身份
func TestServerTLSConfig_InvalidIdentity(t *testing.T) {
	a, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)
	b, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)

	broken := *a
	broken.KeyPEM = b.KeyPEM

	_, err = ServerTLSConfig(&broken, testALPN)
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = ServerTLSConfig(nil, testALPN)
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = ServerTLSConfig(a, nil)
	assert.ErrorIs(t, err, ErrNoALPN)
}

// TestClientTLSConfig 测试客户端配置
func TestClientTLSConfig(t *testing.T) {
	conf, err := ClientTLSConfig(Permissive{}, testALPN)
	require.NoError(t, err)
	assert.True(t, conf.InsecureSkipVerify)
	assert.NotNil(t, conf.VerifyConnection)
	assert.Empty(t, conf.Certificates)

	_, err = ClientTLSConfig(nil, testALPN)
	assert.ErrorIs(t, err, ErrNilPolicy)

	_, err = ClientTLSConfig(Permissive{}, nil)
	assert.ErrorIs(t, err, ErrNoALPN)
}

// handshake 通过本地 TCP 连接完成一次 TLS 握手
func handshake(t *testing.T, server, client *tls.Config, serverName string) (serverErr, clientErr error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client = client.Clone()
	client.ServerName = serverName

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		sc, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer sc.Close()
		done <- tls.Server(sc, server).HandshakeContext(ctx)
	}()

	cc, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer cc.Close()

	clientErr = tls.Client(cc, client).HandshakeContext(ctx)
	if clientErr != nil {
		cc.Close()
	}
	serverErr = <-done
	return serverErr, clientErr
}

// TestHandshake_Anchored 测试策略参与真实握手
func TestHandshake_Anchored(t *testing.T) {
	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)
	serverConf, err := ServerTLSConfig(id, testALPN)
	require.NoError(t, err)

	t.Run("Pinned", func(t *testing.T) {
		policy, err := NewAnchored([][]byte{id.CertDER})
		require.NoError(t, err)
		clientConf, err := ClientTLSConfig(policy, testALPN)
		require.NoError(t, err)

		serverErr, clientErr := handshake(t, serverConf, clientConf, "localhost")
		assert.NoError(t, clientErr)
		assert.NoError(t, serverErr)
	})

	t.Run("WrongPin", func(t *testing.T) {
		other, err := identity.Generate([]string{"localhost"})
		require.NoError(t, err)
		policy, err := NewAnchored([][]byte{other.CertDER})
		require.NoError(t, err)
		clientConf, err := ClientTLSConfig(policy, testALPN)
		require.NoError(t, err)

		_, clientErr := handshake(t, serverConf, clientConf, "localhost")
		require.Error(t, clientErr)

		var rej *RejectionError
		require.True(t, errors.As(clientErr, &rej))
		assert.Equal(t, AnchoredName, rej.Policy)
		assert.Equal(t, types.ReasonUnknownIssuer, rej.Outcome.Reason)
		assert.ErrorIs(t, clientErr, types.ErrUnknownIssuer)
	})

	t.Run("PermissiveWrongName", func(t *testing.T) {
		clientConf, err := ClientTLSConfig(Permissive{}, testALPN)
		require.NoError(t, err)

		serverErr, clientErr := handshake(t, serverConf, clientConf, "not-the-server.test")
		assert.NoError(t, clientErr)
		assert.NoError(t, serverErr)
	})
}

// TestVerifyConnection_Input 测试策略收到的验证输入
func TestVerifyConnection_Input(t *testing.T) {
	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)
	serverConf, err := ServerTLSConfig(id, testALPN)
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	var got types.VerificationInput
	policy := interfaces.PolicyFunc(func(in types.VerificationInput) types.Outcome {
		got = in
		return types.Accept()
	})
	clientConf, err := ClientTLSConfig(policy, testALPN, WithClock(mock))
	require.NoError(t, err)

	_, clientErr := handshake(t, serverConf, clientConf, "localhost")
	require.NoError(t, clientErr)

	assert.Equal(t, "localhost", got.ServerName)
	assert.Equal(t, mock.Now(), got.Now)
	require.Len(t, got.PeerChain, 1)
	assert.Equal(t, id.CertDER, got.PeerChain[0].Raw)

	n := 0
	for range got.SCTs {
		n++
	}
	assert.Zero(t, n)
}
