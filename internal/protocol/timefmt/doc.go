// Package timefmt 实现时间格式化请求/响应协议
//
// 客户端在每个请求上打开一条双向流，写入 CBOR 编码的 Request 后关闭
// 发送方向；服务端按请求中的 strftime 格式格式化当前时间，写回
// Response 后关闭流。
//
// 支持的格式指令见 Strftime。
package timefmt
