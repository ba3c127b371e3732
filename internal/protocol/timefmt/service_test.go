package timefmt

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/internal/core/metrics"
	sectls "github.com/dep2p/go-quicboot/internal/core/security/tls"
	qtransport "github.com/dep2p/go-quicboot/internal/core/transport/quic"
)

// byteCounter 只统计流字节数
type byteCounter struct {
	metrics.Nop
	in, out atomic.Int64
}

func (b *byteCounter) StreamBytes(d metrics.Direction, n int) {
	if d == metrics.Inbound {
		b.in.Add(int64(n))
	} else {
		b.out.Add(int64(n))
	}
}

// connect 启动运行 svc 的服务端并返回已连接的客户端连接
func connect(t *testing.T, svc *Service) *qtransport.Connection {
	t.Helper()

	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)

	sc, err := qtransport.ConfigureServer(id, qtransport.DefaultTuning())
	require.NoError(t, err)
	server, err := qtransport.BindServer("127.0.0.1:0", sc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = server.Serve(ctx, svc.Handle) }()

	policy, err := sectls.NewAnchored([][]byte{id.CertDER})
	require.NoError(t, err)
	cc, err := qtransport.ConfigureClient(policy, qtransport.DefaultTuning())
	require.NoError(t, err)
	client, err := qtransport.BindClient("127.0.0.1:0", cc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dialCancel()
	connecting, err := client.Connect(dialCtx, server.LocalAddr().String(), "localhost")
	require.NoError(t, err)
	conn, err := connecting.Await(dialCtx)
	require.NoError(t, err)
	return conn
}

// TestQuery 测试请求/响应
func TestQuery(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(fixed)

	serverBytes := &byteCounter{}
	clientBytes := &byteCounter{}
	conn := connect(t, NewService(WithClock(mock), WithDelay(0), WithReporter(serverBytes)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := Query(ctx, conn, "%Y-%m-%d %H:%M:%S", WithReporter(clientBytes))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05 14:07:09", got)

	// 两端统计的字节数对称
	assert.Positive(t, clientBytes.out.Load())
	assert.Positive(t, clientBytes.in.Load())
	assert.Eventually(t, func() bool {
		return serverBytes.in.Load() == clientBytes.out.Load() &&
			serverBytes.out.Load() == clientBytes.in.Load()
	}, 2*time.Second, 10*time.Millisecond)
}

// TestQuery_RemoteError 测试服务端格式错误
func TestQuery_RemoteError(t *testing.T) {
	conn := connect(t, NewService(WithDelay(0)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Query(ctx, conn, "%Q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "unsupported directive")

	// 同一连接上的后续请求不受影响
	got, err := Query(ctx, conn, "%%")
	require.NoError(t, err)
	assert.Equal(t, "%", got)
}

// TestQuery_Delay 测试模拟处理延迟
func TestQuery_Delay(t *testing.T) {
	conn := connect(t, NewService(WithDelay(100*time.Millisecond)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	got, err := Query(ctx, conn, "%Y")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Len(t, got, 4)
}

// TestQuery_Cancelled 测试请求方取消
func TestQuery_Cancelled(t *testing.T) {
	conn := connect(t, NewService(WithDelay(5*time.Second)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Query(ctx, conn, "%Y")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestQuery_Concurrent 测试同一连接上的并发请求
func TestQuery_Concurrent(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(fixed)
	conn := connect(t, NewService(WithClock(mock), WithDelay(0)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	formats := []string{"%Y", "%m", "%d", "%H", "%M", "%S", "%b", "%A"}
	want := []string{"2024", "03", "05", "14", "07", "09", "Mar", "Tuesday"}

	var wg sync.WaitGroup
	got := make([]string, len(formats))
	errs := make([]error, len(formats))
	for i, f := range formats {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = Query(ctx, conn, f)
		}()
	}
	wg.Wait()

	for i := range formats {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i], got[i])
	}
}
