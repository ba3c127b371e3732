package quicboot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// DefaultProbeAddr 演示中预期无服务端的地址
const DefaultProbeAddr = "127.0.0.1:5000"

// DefaultDemoFormats 演示中请求的时间格式
var DefaultDemoFormats = []string{"%Y-%m-%d %H:%M:%S", "%A, %d %B %Y %I:%M %p"}

// DemoOptions 演示选项
type DemoOptions struct {
	// ProbeAddr 先尝试连接的地址，预期不可达；为空时跳过
	ProbeAddr string

	// Formats 连接成功后依次请求的时间格式
	Formats []string

	// ServerOptions / ClientOptions 追加到两端的选项
	ServerOptions []Option
	ClientOptions []Option

	// StopTimeout 排空两端的最长等待
	StopTimeout time.Duration
}

// DemoResult 单次时间请求的结果
type DemoResult struct {
	Format string
	Data   string
	Err    error
}

// DemoReport 演示结果
type DemoReport struct {
	// ServerAddr 服务端实际地址
	ServerAddr string

	// CertFingerprint 服务端证书 SHA-256 指纹
	CertFingerprint string

	// Policy 客户端使用的验证策略
	Policy string

	// ProbeErr 探测连接的结果，预期为 types.ErrPeerUnreachable
	ProbeErr error

	// RemoteAddr 客户端看到的服务端地址
	RemoteAddr string

	Results []DemoResult
}

// RunDemo 在同一进程中运行服务端与客户端
//
// 服务端生成（并按配置持久化）身份后，其证书作为客户端的固定证书。
// 客户端先连接 ProbeAddr（预期失败），再连接服务端并请求时间。
// 未选择策略时使用 anchored。
func RunDemo(ctx context.Context, cfg *config.Config, opts DemoOptions) (*DemoReport, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if opts.Formats == nil {
		opts.Formats = DefaultDemoFormats
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 5 * time.Second
	}

	serverCfg := *cfg
	server, err := NewServer(&serverCfg, opts.ServerOptions...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	defer server.Close()
	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	id := server.Identity()
	sum := sha256.Sum256(id.CertDER)
	report := &DemoReport{
		ServerAddr:      server.Addr().String(),
		CertFingerprint: hex.EncodeToString(sum[:]),
	}

	clientCfg := *cfg
	if clientCfg.Security.Policy == "" {
		clientCfg.Security.Policy = types.PolicyAnchored.String()
	}
	clientOpts := append([]Option{WithPinnedCertificates(id.CertDER)}, opts.ClientOptions...)
	client, err := NewClient(&clientCfg, clientOpts...)
	if err != nil {
		return report, fmt.Errorf("client: %w", err)
	}
	defer client.Close()
	if err := client.Start(ctx); err != nil {
		return report, fmt.Errorf("client: %w", err)
	}
	report.Policy = client.Policy().Name()

	g, gctx := errgroup.WithContext(ctx)

	if opts.ProbeAddr != "" && opts.ProbeAddr != report.ServerAddr {
		g.Go(func() error {
			conn, err := client.Connect(gctx, opts.ProbeAddr)
			if err == nil {
				_ = conn.Close()
			}
			report.ProbeErr = err
			logger.Info("探测连接结束", "addr", opts.ProbeAddr, "err", err)
			return nil
		})
	}

	g.Go(func() error {
		conn, err := client.Connect(gctx, report.ServerAddr)
		if err != nil {
			return err
		}
		defer conn.Close()
		report.RemoteAddr = conn.RemoteAddr().String()

		for _, f := range opts.Formats {
			data, err := client.QueryTime(gctx, conn, f)
			report.Results = append(report.Results, DemoResult{Format: f, Data: data, Err: err})
			if err != nil && !errors.Is(err, ErrRemoteFormat) {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), opts.StopTimeout)
	defer cancel()
	if err := client.Stop(stopCtx); err != nil {
		return report, fmt.Errorf("client: %w", err)
	}
	if err := server.Stop(stopCtx); err != nil {
		return report, fmt.Errorf("server: %w", err)
	}
	return report, nil
}
