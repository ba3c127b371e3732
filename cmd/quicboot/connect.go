package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-quicboot"
	"github.com/dep2p/go-quicboot/config"
)

// policyFlags 验证策略参数
type policyFlags struct {
	policy     string
	pins       []string
	serverName string
}

func (f *policyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.policy, "policy", "", "验证策略：permissive 或 anchored（必须显式选择）")
	fs.StringSliceVar(&f.pins, "pin", nil, "anchored 策略信任的证书文件（PEM，可重复）")
	fs.StringVar(&f.serverName, "server-name", "", "期望的服务器名（默认取配置，localhost）")
}

func (f *policyFlags) apply(cfg *config.SecurityConfig) {
	if f.policy != "" {
		cfg.Policy = f.policy
	}
	if len(f.pins) > 0 {
		cfg.PinnedCertFiles = f.pins
	}
	if f.serverName != "" {
		cfg.ServerName = f.serverName
	}
}

func newConnectCmd(a *app) *cobra.Command {
	var (
		policy  policyFlags
		formats []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connect [addr]",
		Short: "连接服务端并请求时间",
		Long: `连接服务端并按给定格式请求当前时间。

addr 默认为配置中的监听地址（127.0.0.1:5001）。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			policy.apply(&cfg.Security)

			remote := cfg.Transport.ListenAddr
			if len(args) == 1 {
				remote = args[0]
			}

			client, err := quicboot.NewClient(cfg, a.options()...)
			if err != nil {
				return fmt.Errorf("创建客户端失败: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := client.Start(ctx); err != nil {
				return err
			}

			conn, err := client.Connect(ctx, remote)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[client] connected: addr=%s policy=%s\n", conn.RemoteAddr(), client.Policy().Name())

			for _, f := range formats {
				data, err := client.QueryTime(ctx, conn, f)
				if err != nil {
					if errors.Is(err, quicboot.ErrRemoteFormat) {
						fmt.Fprintf(out, "%q -> 错误: %v\n", f, err)
						continue
					}
					_ = conn.Close()
					return err
				}
				fmt.Fprintf(out, "%q -> %s\n", f, data)
			}

			_ = conn.Close()
			return client.Stop(ctx)
		},
	}

	policy.register(cmd)
	cmd.Flags().StringArrayVarP(&formats, "format", "f", []string{"%Y-%m-%d %H:%M:%S"}, "strftime 时间格式（可重复）")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "整体超时")
	return cmd
}
