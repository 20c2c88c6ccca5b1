package model

import (
	"database/sql/driver"
	"fmt"
)

// Role is one of the three portal roles. Any other value is rejected when
// parsed, scanned from the store or written to it.
type Role string

const (
	RoleUser      Role = "ROLE_PORTAL_USER"
	RoleModerator Role = "ROLE_PORTAL_MODERATOR"
	RoleAdmin     Role = "ROLE_PORTAL_ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts a raw value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func AllRoles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("role: unsupported column type %T", src)
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("unknown role %q", string(r))
	}
	return string(r), nil
}
