// Package main 提供 quicboot 命令行入口
//
// 子命令：
//
//	quicboot serve     启动服务端，接受连接并提供时间服务
//	quicboot connect   连接服务端并请求时间
//	quicboot gencert   生成并保存自签名证书
//	quicboot demo      同进程运行服务端与客户端
//	quicboot version   显示版本
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
