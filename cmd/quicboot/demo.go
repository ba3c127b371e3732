package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-quicboot"
	"github.com/dep2p/go-quicboot/pkg/types"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		policy  policyFlags
		id      identityFlags
		listen  string
		probe   string
		formats []string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "同进程运行服务端与客户端",
		Long: `在同一进程中启动服务端（默认 127.0.0.1:5001）和客户端。

客户端先连接无服务端的探测地址（默认 127.0.0.1:5000，预期不可达），
再以服务端证书作为固定证书连接服务端并请求时间。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			policy.apply(&cfg.Security)
			id.apply(cmd, &cfg.Identity)
			if listen != "" {
				cfg.Transport.ListenAddr = listen
			}

			report, err := quicboot.RunDemo(cmd.Context(), cfg, quicboot.DemoOptions{
				ProbeAddr:     probe,
				Formats:       formats,
				ServerOptions: a.options(),
				ClientOptions: a.options(),
			})
			if report != nil {
				printReport(cmd, report)
			}
			return err
		},
	}

	policy.register(cmd)
	id.register(cmd, true)
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "服务端监听地址")
	cmd.Flags().StringVar(&probe, "probe", quicboot.DefaultProbeAddr, "预期不可达的探测地址，空字符串跳过")
	cmd.Flags().StringArrayVarP(&formats, "format", "f", quicboot.DefaultDemoFormats, "strftime 时间格式（可重复）")
	return cmd
}

func printReport(cmd *cobra.Command, r *quicboot.DemoReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[server] listening: addr=%s sha256=%s\n", r.ServerAddr, r.CertFingerprint)
	if r.Policy != "" {
		fmt.Fprintf(out, "[client] policy: %s\n", r.Policy)
	}

	switch {
	case r.ProbeErr == nil:
	case errors.Is(r.ProbeErr, types.ErrPeerUnreachable):
		fmt.Fprintf(out, "[client] probe unreachable (expected): %v\n", r.ProbeErr)
	default:
		fmt.Fprintf(out, "[client] probe failed: %v\n", r.ProbeErr)
	}

	if r.RemoteAddr != "" {
		fmt.Fprintf(out, "[client] connected: addr=%s\n", r.RemoteAddr)
	}
	for _, res := range r.Results {
		if res.Err != nil {
			fmt.Fprintf(out, "[client] %q -> error: %v\n", res.Format, res.Err)
			continue
		}
		fmt.Fprintf(out, "[client] %q -> %s\n", res.Format, res.Data)
	}
}
