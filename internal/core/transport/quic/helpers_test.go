package quic

import (
	"context"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/internal/core/metrics"
	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// testTuning 测试用传输参数，握手超时较短
func testTuning() Tuning {
	t := DefaultTuning()
	t.HandshakeIdleTimeout = 2 * time.Second
	t.KeepAlivePeriod = 0
	return t
}

// newServer 在 addr 上绑定服务端端点
func newServer(t *testing.T, addr string, tuning Tuning, opts ...Option) (*Endpoint, *types.Identity) {
	t.Helper()

	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)
	sc, err := ConfigureServer(id, tuning)
	require.NoError(t, err)

	ep, err := BindServer(addr, sc, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ep.Close() })
	return ep, id
}

// newClient 绑定客户端端点
func newClient(t *testing.T, policy interfaces.VerificationPolicy, tuning Tuning, opts ...Option) *Endpoint {
	t.Helper()

	cc, err := ConfigureClient(policy, tuning)
	require.NoError(t, err)

	ep, err := BindClient("127.0.0.1:0", cc, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ep.Close() })
	return ep
}

// pinned 返回只信任 id 的 Anchored 策略
func pinned(t *testing.T, id *types.Identity) interfaces.VerificationPolicy {
	t.Helper()
	p, err := sectls.NewAnchored([][]byte{id.CertDER})
	require.NoError(t, err)
	return p
}

// dial 连接并等待握手结果
func dial(t *testing.T, client *Endpoint, remote, serverName string) (*Connection, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connecting, err := client.Connect(ctx, remote, serverName)
	require.NoError(t, err)
	return connecting.Await(ctx)
}

// serveInto 在后台运行 Serve，已建立的连接发送到返回的 channel
func serveInto(t *testing.T, server *Endpoint) <-chan *Connection {
	t.Helper()
	conns := make(chan *Connection, 16)
	go func() {
		_ = server.Serve(context.Background(), func(_ context.Context, c *Connection) {
			conns <- c
		})
	}()
	return conns
}

// recorder 记录指标调用的 Reporter
type recorder struct {
	mu         sync.Mutex
	succeeded  map[types.Role]int
	failed     map[types.HandshakeFailure]int
	rejections map[types.RejectReason]int
	active     int
}

func newRecorder() *recorder {
	return &recorder{
		succeeded:  make(map[types.Role]int),
		failed:     make(map[types.HandshakeFailure]int),
		rejections: make(map[types.RejectReason]int),
	}
}

func (r *recorder) HandshakeSucceeded(role types.Role, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded[role]++
}

func (r *recorder) HandshakeFailed(_ types.Role, f types.HandshakeFailure, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[f]++
}

func (r *recorder) VerificationRejected(reason types.RejectReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections[reason]++
}

func (r *recorder) ConnectionOpened(types.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active++
}

func (r *recorder) ConnectionClosed(types.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
}

func (r *recorder) StreamBytes(metrics.Direction, int) {}

func (r *recorder) snapshot() (succeeded map[types.Role]int, failed map[types.HandshakeFailure]int, rejections map[types.RejectReason]int, active int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.succeeded), maps.Clone(r.failed), maps.Clone(r.rejections), r.active
}
