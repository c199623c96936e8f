package policy

import (
	"net/http"
	"testing"

	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/model"
)

func TestAuthorize(t *testing.T) {
	user := &identity.Identity{ID: "u1", Role: model.RoleUser}
	admin := &identity.Identity{ID: "a1", Role: model.RoleAdmin}
	blockedAdmin := &identity.Identity{ID: "a2", Role: model.RoleAdmin, IsBlocked: true}

	tests := []struct {
		name    string
		id      *identity.Identity
		req     Requirement
		allowed bool
		status  int
	}{
		{"anonymous authenticated", nil, Authenticated, false, http.StatusUnauthorized},
		{"anonymous admin", nil, Admin, false, http.StatusUnauthorized},
		{"user authenticated", user, Authenticated, true, http.StatusOK},
		{"user admin", user, Admin, false, http.StatusForbidden},
		{"admin admin", admin, Admin, true, http.StatusOK},
		{"blocked admin", blockedAdmin, Admin, false, http.StatusForbidden},
		{"self", user, SelfOrAdmin("u1"), true, http.StatusOK},
		{"other", user, SelfOrAdmin("u2"), false, http.StatusForbidden},
		{"empty target", user, SelfOrAdmin(""), false, http.StatusForbidden},
		{"admin other", admin, SelfOrAdmin("u2"), true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.id, tt.req)
			if d.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", d.Allowed, tt.allowed)
			}
			if d.Status() != tt.status {
				t.Errorf("Status() = %d, want %d", d.Status(), tt.status)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	if IsAdmin(nil) {
		t.Error("nil identity must not be admin")
	}
	if IsAdmin(&identity.Identity{Role: model.RoleUser}) {
		t.Error("USER must not be admin")
	}
	if !IsAdmin(&identity.Identity{Role: model.RoleAdmin}) {
		t.Error("ADMIN must be admin")
	}
}

func TestDecisionMessage(t *testing.T) {
	if got := Authorize(nil, Admin).Message(); got != "Not authenticated" {
		t.Errorf("Message() = %q", got)
	}
	if got := Authorize(&identity.Identity{IsBlocked: true}, Authenticated).Message(); got != "Account is blocked" {
		t.Errorf("Message() = %q", got)
	}
}
