package jwt

import (
	"errors"
	"fmt"
	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

var errMissingID = errors.New("token has no id claim")

type JwtUtilImpl struct {
	method   jwt.SigningMethod
	secrets  map[jwt2.Kind][]byte
	ttls     map[jwt2.Kind]time.Duration
	issuer   string
	audience string
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, customErrors.WrapInternal(
			fmt.Errorf("algorithm %q is not an HMAC method", cfg.JWTAlgorithm), "NewJWTUtil")
	}
	if cfg.AccessSecretKey == "" || cfg.RefreshSecretKey == "" {
		return nil, customErrors.WrapInternal(errors.New("empty signing secret"), "NewJWTUtil")
	}

	return &JwtUtilImpl{
		method: method,
		secrets: map[jwt2.Kind][]byte{
			jwt2.KindAccess:  []byte(cfg.AccessSecretKey),
			jwt2.KindRefresh: []byte(cfg.RefreshSecretKey),
		},
		ttls: map[jwt2.Kind]time.Duration{
			jwt2.KindAccess:  cfg.AccessTokenTTL,
			jwt2.KindRefresh: cfg.RefreshTokenTTL,
		},
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

func (j *JwtUtilImpl) TTL(kind jwt2.Kind) time.Duration {
	return j.ttls[kind]
}

// Sign issues a token of the given kind for user. Every token gets a fresh jti,
// so two tokens minted in the same second still differ.
func (j *JwtUtilImpl) Sign(kind jwt2.Kind, user model.User) (token string, exp time.Time, jti string, err error) {
	if !kind.Valid() {
		return "", time.Time{}, "", customErrors.WrapInternal(fmt.Errorf("unknown kind %q", kind), "Sign")
	}
	jti = uuid.NewString()
	now := time.Now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Login,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttls[kind])),
			ID:        jti,
		},
		Type:   kind,
		UserID: user.ID.String(),
		Role:   string(user.Role),
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.secrets[kind])
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign "+string(kind)+" token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

// Verify checks raw against the secret of kind. Every failure is a
// *customErrors.TokenError so callers cannot tell which check failed.
func (j *JwtUtilImpl) Verify(kind jwt2.Kind, raw string) (jwt2.Claims, error) {
	secret, ok := j.secrets[kind]
	if !ok {
		return jwt2.Claims{}, customErrors.NewTokenError(fmt.Errorf("unknown kind %q", kind))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return jwt2.Claims{}, customErrors.NewTokenError(err)
	}
	if !token.Valid {
		return jwt2.Claims{}, customErrors.NewTokenError(errors.New("token not valid"))
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return jwt2.Claims{}, customErrors.NewTokenError(errors.New("unexpected claims type"))
	}
	if claims.Type != kind {
		return jwt2.Claims{}, customErrors.NewTokenError(fmt.Errorf("token type %q, want %q", claims.Type, kind))
	}
	if claims.UserID == "" {
		return jwt2.Claims{}, customErrors.NewTokenError(errMissingID)
	}

	return *claims, nil
}
