package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles() {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Fatalf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseRole("ROLE_PORTAL_SUPERADMIN"); err == nil {
		t.Fatal("unknown role must be rejected")
	}
	if _, err := ParseRole(""); err == nil {
		t.Fatal("empty role must be rejected")
	}
}

func TestRole_Scan(t *testing.T) {
	var r Role
	if err := r.Scan([]byte("ROLE_PORTAL_ADMIN")); err != nil || r != RoleAdmin {
		t.Fatalf("scan bytes: %q %v", r, err)
	}
	if err := r.Scan("ROLE_PORTAL_MODERATOR"); err != nil || r != RoleModerator {
		t.Fatalf("scan string: %q %v", r, err)
	}
	if err := r.Scan("root"); err == nil {
		t.Fatal("unknown role must fail to scan")
	}
	if err := r.Scan(42); err == nil {
		t.Fatal("non-string column must fail to scan")
	}
}

func TestRole_Value(t *testing.T) {
	v, err := RoleUser.Value()
	if err != nil || v != "ROLE_PORTAL_USER" {
		t.Fatalf("value: %v %v", v, err)
	}
	if _, err := Role("guest").Value(); err == nil {
		t.Fatal("unknown role must not be written")
	}
}

func TestUserUpdate_Columns(t *testing.T) {
	if !(UserUpdate{}).Empty() {
		t.Fatal("zero update must be empty")
	}
	login := "bob"
	role := RoleAdmin
	cols := UserUpdate{Login: &login, Role: &role}.Columns()
	if len(cols) != 2 || cols["login"] != "bob" || cols["role"] != RoleAdmin {
		t.Fatalf("unexpected columns: %v", cols)
	}
}
