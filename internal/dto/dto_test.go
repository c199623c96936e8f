package dto

import "testing"

func TestPaginationDefaults(t *testing.T) {
	var p PaginationRequest
	if p.GetPage() != 1 || p.GetPageSize() != 20 || p.GetOffset() != 0 {
		t.Fatalf("unexpected defaults: page=%d size=%d offset=%d", p.GetPage(), p.GetPageSize(), p.GetOffset())
	}

	p = PaginationRequest{Page: 3, PageSize: 10}
	if p.GetOffset() != 20 {
		t.Errorf("GetOffset() = %d, want 20", p.GetOffset())
	}
}

func TestSignupRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{"ok", SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "password1"}, false},
		{"short name", SignupRequest{Name: "A", Email: "alice@example.com", Password: "password1"}, true},
		{"bad email", SignupRequest{Name: "Alice", Email: "nope", Password: "password1"}, true},
		{"short password", SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "short"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserByEmailQueryValidate(t *testing.T) {
	q := UserByEmailQuery{Email: "  bob@example.com "}
	if err := q.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.Email != "bob@example.com" {
		t.Errorf("Email not trimmed: %q", q.Email)
	}

	for _, email := range []string{"", "not-an-email"} {
		q := UserByEmailQuery{Email: email}
		if err := q.Validate(); err == nil {
			t.Errorf("Validate(%q) expected error", email)
		}
	}
}
