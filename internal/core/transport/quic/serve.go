package quic

import (
	"context"
	"errors"

	"github.com/dep2p/go-quicboot/pkg/types"
)

// Handler 处理已建立的连接
type Handler func(ctx context.Context, conn *Connection)

// Serve 持续接受连接并交给 handler
//
// 单个连接的握手失败只记录日志和指标，循环继续。
// 端点开始排空时返回 nil；ctx 结束时返回 ctx 的错误。
// 每个连接的握手与 handler 在独立 goroutine 中执行。
func (e *Endpoint) Serve(ctx context.Context, handler Handler) error {
	for {
		incoming, err := e.Accept(ctx)
		if err != nil {
			if errors.Is(err, types.ErrEndpointDraining) || errors.Is(err, types.ErrEndpointClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		go func() {
			conn, err := incoming.Await(ctx)
			if err != nil {
				// 已在 Await 中记录
				return
			}
			handler(ctx, conn)
		}()
	}
}
