package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	errInactiveUser  = errors.New("user is not active")
	errRefreshReused = errors.New("refresh token already used")
)

// PasswordHasher is satisfied by password.Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type Service interface {
	// Authenticate never says whether the login exists.
	Authenticate(ctx context.Context, login, password string) (model.User, error)
	ResolveRefresh(ctx context.Context, token string) (model.User, error)
	ResolveAccess(ctx context.Context, token string) (model.User, error)
	IssuePair(user model.User) (model.TokenPair, error)
	Login(context.Context, dto.LoginDTO) (model.TokenPair, error)
	Renew(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
}

type authService struct {
	userRepo repo.UserRepo
	registry repo.RefreshRegistry
	jwtUtil  jwt.JWTUtil
	hasher   PasswordHasher
	metrics  *metrics.AuthMetrics
	v        *validator.Validate

	// dummyDigest is verified for unknown logins so they cost as much as a wrong password.
	dummyDigest string
}

// New builds the auth service. A nil registry keeps refresh tokens stateless:
// rotation issues a new token but the presented one stays valid until it expires.
func New(
	ur repo.UserRepo,
	registry repo.RefreshRegistry,
	jm jwt.JWTUtil,
	h PasswordHasher,
	m *metrics.AuthMetrics,
	v *validator.Validate,
) Service {
	dummy, _ := h.Hash(uuid.NewString())
	return &authService{
		userRepo: ur, registry: registry, jwtUtil: jm, hasher: h, metrics: m, v: v,
		dummyDigest: dummy,
	}
}

func (a *authService) Authenticate(ctx context.Context, login, password string) (model.User, error) {
	user, err := a.userRepo.GetUserByLogin(ctx, login)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		a.hasher.Verify(password, a.dummyDigest)
		return model.User{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Authenticate")
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return model.User{}, customErrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return model.User{}, customErrors.ErrInvalidCredentials
	}
	return user, nil
}

func (a *authService) ResolveRefresh(ctx context.Context, token string) (model.User, error) {
	user, _, err := a.resolve(ctx, jwt.KindRefresh, token)
	return user, err
}

func (a *authService) ResolveAccess(ctx context.Context, token string) (model.User, error) {
	user, _, err := a.resolve(ctx, jwt.KindAccess, token)
	return user, err
}

// resolve maps a token of the given kind to a live user. Codec failures, a bad
// id claim, a missing user and an inactive user all become ErrInvalidSession.
// Store failures stay internal.
func (a *authService) resolve(ctx context.Context, kind jwt.Kind, token string) (model.User, jwt.Claims, error) {
	claims, err := a.jwtUtil.Verify(kind, token)
	if err != nil {
		return model.User{}, jwt.Claims{}, customErrors.NewInvalidSession(err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.User{}, jwt.Claims{}, customErrors.NewInvalidSession(err)
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, jwt.Claims{}, customErrors.NewInvalidSession(err)
	case err != nil:
		return model.User{}, jwt.Claims{}, customErrors.WrapInternal(err, "resolve "+string(kind))
	}
	if !user.IsActive {
		return model.User{}, jwt.Claims{}, customErrors.NewInvalidSession(errInactiveUser)
	}

	return user, claims, nil
}

func (a *authService) IssuePair(user model.User) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.Sign(jwt.KindAccess, user)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "sign access token")
	}
	rt, rtExp, jti, err := a.jwtUtil.Sign(jwt.KindRefresh, user)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "sign refresh token")
	}
	a.metrics.Issued(string(jwt.KindAccess))
	a.metrics.Issued(string(jwt.KindRefresh))

	now := time.Now()
	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now),
		RefreshTTL:      rtExp.Sub(now),
		UserId:          user.ID,
		RefreshTokenJTI: jti,
	}, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		a.metrics.Login(metrics.ResultFailure)
		return model.TokenPair{}, customErrors.NewValidation(err.Error())
	}

	user, err := a.Authenticate(ctx, in.Login, in.Password)
	if err != nil {
		a.metrics.Login(outcome(err))
		return model.TokenPair{}, err
	}

	pair, err := a.IssuePair(user)
	if err != nil {
		a.metrics.Login(metrics.ResultError)
		return model.TokenPair{}, err
	}
	a.metrics.Login(metrics.ResultSuccess)
	return pair, nil
}

func (a *authService) Renew(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		a.metrics.Renewal(metrics.ResultFailure)
		return model.TokenPair{}, customErrors.NewInvalidSession(err)
	}

	user, claims, err := a.resolve(ctx, jwt.KindRefresh, in.RefreshToken)
	if err != nil {
		a.metrics.Renewal(outcome(err))
		return model.TokenPair{}, err
	}

	if a.registry != nil {
		first, err := a.registry.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			a.metrics.Renewal(metrics.ResultError)
			return model.TokenPair{}, customErrors.WrapInternal(err, "Renew")
		}
		if !first {
			a.metrics.Renewal(metrics.ResultFailure)
			return model.TokenPair{}, customErrors.NewInvalidSession(errRefreshReused)
		}
	}

	pair, err := a.IssuePair(user)
	if err != nil {
		a.metrics.Renewal(metrics.ResultError)
		return model.TokenPair{}, err
	}
	a.metrics.Renewal(metrics.ResultSuccess)
	return pair, nil
}

// Logout retires the presented refresh token when the registry is enabled.
// A missing or already invalid token is not an error: there is nothing to retire.
func (a *authService) Logout(ctx context.Context, in dto.LogoutDTO) error {
	a.metrics.Logout()
	if a.registry == nil || in.RefreshToken == "" {
		return nil
	}

	claims, err := a.jwtUtil.Verify(jwt.KindRefresh, in.RefreshToken)
	if err != nil {
		return nil
	}
	if _, err := a.registry.Consume(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func outcome(err error) string {
	if customErrors.IsInternal(err) {
		return metrics.ResultError
	}
	return metrics.ResultFailure
}
