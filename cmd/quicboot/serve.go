package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-quicboot"
	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// identityFlags 身份相关参数
type identityFlags struct {
	hostnames    []string
	certFile     string
	keyFile      string
	loadExisting bool
	noPersist    bool
}

// register 注册参数；serving 为 false 时不注册加载/保存开关
func (f *identityFlags) register(cmd *cobra.Command, serving bool) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.hostnames, "hostname", nil, "证书中的主机名（可重复）")
	fs.StringVar(&f.certFile, "cert", "", "证书文件路径")
	fs.StringVar(&f.keyFile, "key", "", "私钥文件路径")
	if serving {
		fs.BoolVar(&f.loadExisting, "load-existing", false, "优先加载已有证书")
		fs.BoolVar(&f.noPersist, "no-persist", false, "不保存生成的证书")
	}
}

func (f *identityFlags) apply(cmd *cobra.Command, cfg *config.IdentityConfig) {
	if len(f.hostnames) > 0 {
		cfg.Hostnames = f.hostnames
	}
	if f.certFile != "" {
		cfg.CertFile = f.certFile
	}
	if f.keyFile != "" {
		cfg.KeyFile = f.keyFile
	}
	if cmd.Flags().Changed("load-existing") {
		cfg.LoadExisting = f.loadExisting
	}
	if f.noPersist {
		cfg.Persist = false
	}
}

func newServeCmd(a *app) *cobra.Command {
	var (
		listen       string
		drainTimeout time.Duration
		id           identityFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动服务端",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if listen != "" {
				cfg.Transport.ListenAddr = listen
			}
			id.apply(cmd, &cfg.Identity)

			server, err := quicboot.NewServer(cfg, a.options()...)
			if err != nil {
				return fmt.Errorf("创建服务端失败: %w", err)
			}
			defer server.Close()

			ctx := cmd.Context()
			if err := server.Start(ctx); err != nil {
				return err
			}

			sum := sha256.Sum256(server.Identity().CertDER)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "监听地址: %s\n", server.Addr())
			fmt.Fprintf(out, "证书指纹: %s\n", hex.EncodeToString(sum[:]))
			if cfg.Identity.Persist {
				fmt.Fprintf(out, "证书文件: %s\n", cfg.Identity.CertFile)
			}
			fmt.Fprintln(out, "服务端已启动，按 Ctrl+C 退出")

			<-ctx.Done()

			fmt.Fprintln(out, "正在排空连接...")
			stopCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			return server.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "监听地址（默认取配置，127.0.0.1:5001）")
	cmd.Flags().DurationVar(&drainTimeout, "drain-timeout", 10*time.Second, "退出时等待连接结束的最长时间")
	id.register(cmd, true)
	return cmd
}

func newGencertCmd(a *app) *cobra.Command {
	var id identityFlags

	cmd := &cobra.Command{
		Use:   "gencert",
		Short: "生成并保存自签名证书",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Identity
			id.apply(cmd, &cfg)
			cfg.Persist = true
			cfg.LoadExisting = false
			if err := cfg.Validate(); err != nil {
				return err
			}

			generated, err := generateIdentity(cfg)
			if err != nil {
				return err
			}

			sum := sha256.Sum256(generated.CertDER)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "主机名:   %v\n", generated.Hostnames)
			fmt.Fprintf(out, "有效期至: %s\n", generated.Leaf.NotAfter.Format(time.RFC3339))
			fmt.Fprintf(out, "证书指纹: %s\n", hex.EncodeToString(sum[:]))
			fmt.Fprintf(out, "证书文件: %s\n", cfg.CertFile)
			fmt.Fprintf(out, "私钥文件: %s\n", cfg.KeyFile)
			return nil
		},
	}
	id.register(cmd, false)
	return cmd
}

// generateIdentity 生成身份并写入配置中的文件
func generateIdentity(cfg config.IdentityConfig) (*types.Identity, error) {
	return identity.Provide(cfg, identity.NewFileStore(cfg.CertFile, cfg.KeyFile))
}
