package grpc

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	appsvc "github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/service"
	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const credentialsMessage = "could not validate credentials"

type Handler struct {
	svc appsvc.Service
	log *zap.Logger
}

func NewHandler(svc appsvc.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Login expects {"login": ..., "password": ...}.
func (h *Handler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	pair, err := h.svc.Login(ctx, dto.LoginDTO{
		Login:    fields["login"].GetStringValue(),
		Password: fields["password"].GetStringValue(),
	})
	if err != nil {
		h.log.Debug("gRPC Login rejected", zap.Error(err))
		return nil, mapError(err)
	}
	return pairResponse(pair)
}

func (h *Handler) Refresh(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	pair, err := h.svc.Renew(ctx, dto.RefreshDTO{RefreshToken: req.GetValue()})
	if err != nil {
		h.log.Debug("gRPC Refresh rejected", zap.Error(err))
		return nil, mapError(err)
	}
	return pairResponse(pair)
}

func (h *Handler) Logout(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := h.svc.Logout(ctx, dto.LogoutDTO{RefreshToken: req.GetValue()}); err != nil {
		return nil, mapError(err)
	}
	return &emptypb.Empty{}, nil
}

// Validate resolves an access token to the user it names.
func (h *Handler) Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	user, err := h.svc.ResolveAccess(ctx, req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return structpb.NewStruct(map[string]any{
		"user_id": user.ID.String(),
		"login":   user.Login,
		"role":    user.Role.String(),
	})
}

func pairResponse(pair model.TokenPair) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
		"access_ttl":    int64(pair.AccessTTL.Seconds()),
		"refresh_ttl":   int64(pair.RefreshTTL.Seconds()),
		"user_id":       pair.UserId.String(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil
}

func mapError(err error) error {
	switch {
	case customErrors.IsValidation(err):
		return status.Error(codes.InvalidArgument, customErrors.ValidationDetail(err))
	case customErrors.IsInvalidArgument(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case customErrors.IsInvalidCredentials(err):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case customErrors.IsInvalidSession(err), customErrors.IsInvalidToken(err):
		return status.Error(codes.Unauthenticated, credentialsMessage)
	case customErrors.IsForbidden(err):
		return status.Error(codes.PermissionDenied, customErrors.ForbiddenRule(err))
	case customErrors.IsAlreadyExists(err):
		return status.Error(codes.AlreadyExists, err.Error())
	case customErrors.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
