package types

// ============================================================================
//                              Role - 端点角色
// ============================================================================

// Role 端点角色
type Role int

const (
	// RoleUnknown 未知角色
	RoleUnknown Role = iota
	// RoleServer 服务端：接受连接
	RoleServer
	// RoleClient 客户端：发起连接
	RoleClient
)

// String 返回角色的字符串表示
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              EndpointState - 端点状态
// ============================================================================

// EndpointState 端点生命周期状态
//
// 状态转换：Unbound → Bound → Draining → Closed
type EndpointState int

const (
	// EndpointUnbound 尚未绑定
	EndpointUnbound EndpointState = iota
	// EndpointBound 已绑定本地地址
	EndpointBound
	// EndpointDraining 正在排空：不再接受新连接，等待已有连接结束
	EndpointDraining
	// EndpointClosed 已关闭
	EndpointClosed
)

// String 返回状态的字符串表示
func (s EndpointState) String() string {
	switch s {
	case EndpointUnbound:
		return "unbound"
	case EndpointBound:
		return "bound"
	case EndpointDraining:
		return "draining"
	case EndpointClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              HandshakeState - 待定连接状态
// ============================================================================

// HandshakeState 待定连接的握手状态
//
// Accepted(pending) → Established(connection) | Failed(reason)
type HandshakeState int

const (
	// HandshakeAccepted 传输层已接受，握手尚未完成
	HandshakeAccepted HandshakeState = iota
	// HandshakeEstablished 握手完成，连接可用
	HandshakeEstablished
	// HandshakeFailed 握手失败
	HandshakeFailed
)

// String 返回握手状态的字符串表示
func (s HandshakeState) String() string {
	switch s {
	case HandshakeAccepted:
		return "accepted"
	case HandshakeEstablished:
		return "established"
	case HandshakeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              HandshakeFailure - 握手失败类型
// ============================================================================

// HandshakeFailure 握手失败类型
type HandshakeFailure int

const (
	// FailureUnknown 未分类的失败
	FailureUnknown HandshakeFailure = iota
	// FailureNameMismatch 名称不匹配
	FailureNameMismatch
	// FailureVerificationRejected 验证策略拒绝
	FailureVerificationRejected
	// FailureProtocolMismatch 协议不匹配
	FailureProtocolMismatch
	// FailurePeerUnreachable 对端不可达
	FailurePeerUnreachable
	// FailureTimeout 超时
	FailureTimeout
)

// String 返回失败类型的字符串表示
func (f HandshakeFailure) String() string {
	switch f {
	case FailureNameMismatch:
		return "name mismatch"
	case FailureVerificationRejected:
		return "verification rejected"
	case FailureProtocolMismatch:
		return "protocol mismatch"
	case FailurePeerUnreachable:
		return "peer unreachable"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err 返回失败类型对应的哨兵错误
func (f HandshakeFailure) Err() error {
	switch f {
	case FailureNameMismatch:
		return ErrNameMismatch
	case FailureVerificationRejected:
		return ErrVerificationRejected
	case FailureProtocolMismatch:
		return ErrProtocolMismatch
	case FailurePeerUnreachable:
		return ErrPeerUnreachable
	case FailureTimeout:
		return ErrTimeout
	default:
		return ErrHandshakeFailed
	}
}

// ============================================================================
//                              PolicyKind - 验证策略类型
// ============================================================================

// PolicyKind 验证策略类型
type PolicyKind int

const (
	// PolicyUnspecified 未指定（客户端配置中视为错误）
	PolicyUnspecified PolicyKind = iota
	// PolicyPermissive 接受一切证书（不安全，仅用于本地测试）
	PolicyPermissive
	// PolicyAnchored 基于固定根证书/证书固定的验证
	PolicyAnchored
)

// String 返回策略类型的字符串表示
func (k PolicyKind) String() string {
	switch k {
	case PolicyPermissive:
		return "permissive"
	case PolicyAnchored:
		return "anchored"
	default:
		return "unspecified"
	}
}

// ParsePolicyKind 从字符串解析策略类型
func ParsePolicyKind(s string) PolicyKind {
	switch s {
	case "permissive":
		return PolicyPermissive
	case "anchored":
		return PolicyAnchored
	default:
		return PolicyUnspecified
	}
}
