// Package quic 实现端点生命周期管理
//
// 端点（Endpoint）将一个本地 UDP socket 与角色默认配置绑定，
// 负责把网络上的握手转换为已认证、可用的连接。
//
// # 状态
//
//	Unbound → Bound → Draining → Closed
//
// # 服务端：两阶段接受
//
//	ep, err := quic.Bind("127.0.0.1:5001", serverConfig)
//	incoming, err := ep.Accept(ctx)   // 传输层接受，握手未完成
//	conn, err := incoming.Await(ctx)  // 握手完成或 *types.HandshakeError
//
// 单个握手失败不影响端点，Serve 会记录失败并继续接受。
//
// # 客户端
//
//	ep, err := quic.Bind("127.0.0.1:0", clientConfig)
//	connecting, err := ep.Connect(ctx, "127.0.0.1:5001", "localhost")
//	conn, err := connecting.Await(ctx)
//
// # 排空
//
// WaitIdle 停止接受新连接，等待所有已跟踪的连接、握手和接受任务结束后
// 关闭 socket；被 ctx 中断时返回 types.ErrIdleWaitInterrupted，端点保持
// Draining，可再次 WaitIdle 或调用 Close 强制关闭。Shutdown 组合两者，
// 返回时端点总是 Closed。
package quic
