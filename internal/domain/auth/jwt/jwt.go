package jwt

import (
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

// Kind selects which secret and lifetime a token is signed with.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims is the claim set carried by both token kinds.
// RegisteredClaims.Subject holds the login, UserID the stringified identifier.
type Claims struct {
	jwt.RegisteredClaims
	Type   Kind   `json:"type"`
	UserID string `json:"id,omitempty"`
	Role   string `json:"role"`
}

type JWTUtil interface {
	Sign(kind Kind, user model.User) (token string, exp time.Time, jti string, err error)
	Verify(kind Kind, token string) (Claims, error)
	TTL(kind Kind) time.Duration
}
