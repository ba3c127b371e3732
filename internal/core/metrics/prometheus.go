package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-quicboot/pkg/types"
)

const namespace = "quicboot"

var (
	handshakesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshakes_total",
		Help:      "Total number of completed handshake attempts",
	}, []string{"role", "result"}) // result: success 或失败类型

	handshakeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "handshake_duration_seconds",
		Help:      "Duration from accept/connect to handshake resolution",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"role"})

	rejectionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_rejections_total",
		Help:      "Total number of peer certificates rejected by the verification policy",
	}, []string{"reason"})

	activeConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_connections",
		Help:      "Number of established connections not yet closed",
	}, []string{"role"})

	streamBytesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_bytes_total",
		Help:      "Application payload bytes carried on streams",
	}, []string{"direction"})
)

// resultSuccess 成功握手的 result 标签
const resultSuccess = "success"

// Prometheus 基于 Prometheus 的 Reporter 实现
type Prometheus struct{}

var _ Reporter = Prometheus{}

// NewPrometheus 创建 Prometheus Reporter
func NewPrometheus() Prometheus {
	return Prometheus{}
}

// HandshakeSucceeded 实现 Reporter
func (Prometheus) HandshakeSucceeded(role types.Role, elapsed time.Duration) {
	handshakesCounter.WithLabelValues(role.String(), resultSuccess).Inc()
	handshakeDuration.WithLabelValues(role.String()).Observe(elapsed.Seconds())
}

// HandshakeFailed 实现 Reporter
func (Prometheus) HandshakeFailed(role types.Role, failure types.HandshakeFailure, elapsed time.Duration) {
	handshakesCounter.WithLabelValues(role.String(), failure.String()).Inc()
	handshakeDuration.WithLabelValues(role.String()).Observe(elapsed.Seconds())
}

// VerificationRejected 实现 Reporter
func (Prometheus) VerificationRejected(reason types.RejectReason) {
	rejectionsCounter.WithLabelValues(reason.String()).Inc()
}

// ConnectionOpened 实现 Reporter
func (Prometheus) ConnectionOpened(role types.Role) {
	activeConnections.WithLabelValues(role.String()).Inc()
}

// ConnectionClosed 实现 Reporter
func (Prometheus) ConnectionClosed(role types.Role) {
	activeConnections.WithLabelValues(role.String()).Dec()
}

// StreamBytes 实现 Reporter
func (Prometheus) StreamBytes(direction Direction, n int) {
	if n > 0 {
		streamBytesCounter.WithLabelValues(string(direction)).Add(float64(n))
	}
}
