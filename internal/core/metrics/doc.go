// Package metrics 提供连接引导过程的 Prometheus 指标
//
// 指标通过 promauto 注册到默认 registry，由 cmd/quicboot 的
// --metrics-addr 经 promhttp 暴露：
//
//	quicboot_handshakes_total{role,result}
//	quicboot_handshake_duration_seconds{role}
//	quicboot_verification_rejections_total{reason}
//	quicboot_active_connections{role}
//	quicboot_stream_bytes_total{direction}
package metrics
