// Package quicboot 建立经证书认证的 QUIC 连接
//
// 本包把身份生成、验证策略、端点配置与端点生命周期组装为两个入口：
//
//   - Server: 生成或加载自签名身份，绑定端点并持续接受连接
//   - Client: 按显式选择的验证策略连接服务端
//
// # 快速开始
//
//	cfg := config.NewConfig()
//	server, err := quicboot.NewServer(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := server.Start(ctx); err != nil {
//	    return err
//	}
//	defer server.Close()
//
//	clientCfg := config.NewConfig()
//	clientCfg.Security.Policy = "anchored"
//	client, err := quicboot.NewClient(clientCfg,
//	    quicboot.WithPinnedCertificates(server.Identity().CertDER))
//	...
//	conn, err := client.Connect(ctx, server.Addr().String())
//
// # 文件组织
//
//	quicboot/
//	├── quicboot.go   # 版本信息
//	├── server.go     # Server：Start、Stop、Close
//	├── client.go     # Client：Connect、QueryTime
//	├── demo.go       # RunDemo：同进程服务端 + 客户端
//	├── options.go    # WithXxx 配置选项
//	├── fx.go         # Fx 应用组装
//	└── errors.go     # 错误定义
//
// 验证策略没有默认值：客户端配置必须显式选择 permissive 或 anchored。
package quicboot
