// Package policy 集中定义访问控制规则，所有中间件与 Handler 只通过 Authorize 判定
package policy

import (
	"net/http"

	"omninet-lottery/backend/internal/identity"
)

// Reason 判定结果原因
type Reason int

const (
	ReasonOK Reason = iota
	ReasonUnauthenticated
	ReasonBlocked
	ReasonForbidden
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonBlocked:
		return "blocked"
	default:
		return "forbidden"
	}
}

// Decision 授权判定
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Status 判定对应的 HTTP 状态码
func (d Decision) Status() int {
	switch d.Reason {
	case ReasonOK:
		return http.StatusOK
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Message 判定对应的响应文案
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonUnauthenticated:
		return "Not authenticated"
	case ReasonBlocked:
		return "Account is blocked"
	case ReasonForbidden:
		return "Forbidden"
	default:
		return ""
	}
}

type requirementKind int

const (
	kindAuthenticated requirementKind = iota
	kindAdmin
	kindSelfOrAdmin
)

// Requirement 访问要求
type Requirement struct {
	kind     requirementKind
	targetID string
}

var (
	// Authenticated 任意未被封禁的已认证用户
	Authenticated = Requirement{kind: kindAuthenticated}
	// Admin 管理员
	Admin = Requirement{kind: kindAdmin}
)

// SelfOrAdmin 目标用户本人或管理员
func SelfOrAdmin(targetID string) Requirement {
	return Requirement{kind: kindSelfOrAdmin, targetID: targetID}
}

// IsAdmin 角色是否为 ADMIN
func IsAdmin(id *identity.Identity) bool {
	return id.IsAdmin()
}

// Authorize 判定身份是否满足访问要求
func Authorize(id *identity.Identity, req Requirement) Decision {
	if id == nil {
		return Decision{Reason: ReasonUnauthenticated}
	}
	if id.IsBlocked {
		return Decision{Reason: ReasonBlocked}
	}

	switch req.kind {
	case kindAuthenticated:
		return allow()
	case kindAdmin:
		if IsAdmin(id) {
			return allow()
		}
	case kindSelfOrAdmin:
		if IsAdmin(id) || (req.targetID != "" && req.targetID == id.ID) {
			return allow()
		}
	}
	return Decision{Reason: ReasonForbidden}
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonOK}
}
