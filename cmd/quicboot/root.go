package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dep2p/go-quicboot"
	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/lib/log"
)

var logger = log.Logger("quicboot/cmd")

// 环境变量（优先级：命令行 > 环境变量 > 配置文件 > 默认值）
const (
	EnvListenAddr = "QUICBOOT_LISTEN_ADDR"
	EnvPolicy     = "QUICBOOT_POLICY"
	EnvServerName = "QUICBOOT_SERVER_NAME"
)

// globalFlags 所有子命令共用的参数
type globalFlags struct {
	configFile  string
	logLevel    string
	logFormat   string
	metricsAddr string
}

// app 子命令共享的运行时状态
type app struct {
	flags globalFlags
	cfg   *config.Config

	logFile       *os.File
	metricsServer *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "quicboot",
		Short: "Certificate-authenticated QUIC connection bootstrap",
		Long: `quicboot 建立经证书认证的 QUIC 连接。

服务端生成或加载自签名证书并接受连接；客户端必须显式选择验证策略：
  permissive  接受任何证书（不安全，仅用于本地测试）
  anchored    只接受固定证书或由固定根证书签发的证书`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "配置文件路径（JSON）")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "日志格式 (text/json)")
	pf.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "Prometheus 指标监听地址，例如 127.0.0.1:9090")

	root.AddCommand(
		newServeCmd(a),
		newConnectCmd(a),
		newGencertCmd(a),
		newDemoCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup 加载配置、设置日志并按需启动指标服务
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.flags.configFile != "" {
		a.cfg, err = config.LoadFile(a.flags.configFile)
		if err != nil {
			return fmt.Errorf("加载配置文件失败: %w", err)
		}
	} else {
		a.cfg = config.NewConfig()
	}

	applyEnvOverrides(a.cfg)
	if a.flags.logLevel != "" {
		a.cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		a.cfg.Log.Format = a.flags.logFormat
	}
	if err := a.cfg.Log.Validate(); err != nil {
		return err
	}

	var out io.Writer = cmd.ErrOrStderr()
	if a.cfg.Log.File != "" {
		a.logFile, err = os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		out = a.logFile
	}
	log.Setup(log.Options{
		Output: out,
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
	})

	if a.flags.metricsAddr != "" {
		if err := a.startMetrics(a.flags.metricsAddr); err != nil {
			return err
		}
	}
	return nil
}

// teardown 释放 setup 中打开的资源
func (a *app) teardown() error {
	var err error
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = a.metricsServer.Shutdown(ctx)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	return err
}

// startMetrics 在 addr 上提供 /metrics
func (a *app) startMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("指标服务监听失败: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", ln.Addr().String())
	return nil
}

// options 返回按全局参数构造的公共选项
func (a *app) options() []quicboot.Option {
	if a.metricsServer != nil {
		return []quicboot.Option{quicboot.WithPrometheus()}
	}
	return nil
}

// applyEnvOverrides 应用环境变量覆盖
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Transport.ListenAddr = v
	}
	if v := os.Getenv(EnvPolicy); v != "" {
		cfg.Security.Policy = v
	}
	if v := os.Getenv(EnvServerName); v != "" {
		cfg.Security.ServerName = v
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), quicboot.VersionInfo())
		},
	}
}
