package service

import (
	"context"
	"errors"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var nameFieldDetail = map[string]string{
	"FirstName":  "Name incorrect",
	"MiddleName": "Surname incorrect",
	"LastName":   "Lastname incorrect",
}

type UserService interface {
	Create(context.Context, dto.CreateUserDTO) (model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, in dto.UpdateUserDTO) (uuid.UUID, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error)
	GrantAdmin(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error)
	RevokeAdmin(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error)
}

type userService struct {
	userRepo repo.UserRepo
	hasher   PasswordHasher
	metrics  *metrics.AuthMetrics
	v        *validator.Validate
}

func NewUserService(ur repo.UserRepo, h PasswordHasher, m *metrics.AuthMetrics, v *validator.Validate) UserService {
	return &userService{userRepo: ur, hasher: h, metrics: m, v: v}
}

func (s *userService) Create(ctx context.Context, in dto.CreateUserDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, validationError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}

	user := model.User{
		ID:           uuid.New(),
		Login:        in.Login,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	created, err := s.userRepo.CreateUser(ctx, user)
	switch {
	case errors.Is(err, customErrors.ErrAlreadyExists):
		return model.User{}, customErrors.ErrAlreadyExists
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}
	return created, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, actor model.User, id uuid.UUID, in dto.UpdateUserDTO) (uuid.UUID, error) {
	upd := model.UserUpdate{
		Login:      in.Login,
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
	}
	if upd.Empty() {
		return uuid.Nil, customErrors.NewValidation("At least one parameter for user update info should be provided")
	}
	if err := s.v.Struct(in); err != nil {
		return uuid.Nil, validationError(err)
	}

	if err := s.authorize(ctx, actor, id); err != nil {
		return uuid.Nil, err
	}
	return s.userRepo.UpdateUser(ctx, id, upd)
}

func (s *userService) Delete(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return uuid.Nil, err
	}
	return s.userRepo.SoftDeleteUser(ctx, id)
}

func (s *userService) GrantAdmin(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error) {
	target, err := s.privilegeTarget(ctx, actor, id)
	if err != nil {
		return uuid.Nil, err
	}
	if target.Role == model.RoleAdmin {
		return uuid.Nil, customErrors.NewAlreadyExists("user already has admin privileges")
	}
	role := model.RoleAdmin
	return s.userRepo.UpdateUser(ctx, id, model.UserUpdate{Role: &role})
}

func (s *userService) RevokeAdmin(ctx context.Context, actor model.User, id uuid.UUID) (uuid.UUID, error) {
	target, err := s.privilegeTarget(ctx, actor, id)
	if err != nil {
		return uuid.Nil, err
	}
	if target.Role != model.RoleAdmin {
		return uuid.Nil, customErrors.NewAlreadyExists("user has no admin privileges")
	}
	role := model.RoleUser
	return s.userRepo.UpdateUser(ctx, id, model.UserUpdate{Role: &role})
}

func (s *userService) authorize(ctx context.Context, actor model.User, id uuid.UUID) error {
	target, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, target); err != nil {
		s.metrics.Denied()
		return err
	}
	return nil
}

// privilegeTarget loads the user whose role an admin is about to change.
func (s *userService) privilegeTarget(ctx context.Context, actor model.User, id uuid.UUID) (model.User, error) {
	if actor.Role != model.RoleAdmin {
		s.metrics.Denied()
		return model.User{}, customErrors.NewForbidden(RuleForbidden)
	}
	if actor.ID == id {
		return model.User{}, customErrors.NewInvalidArgument("Cannot manage privileges of itself")
	}
	target, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if !target.IsActive {
		return model.User{}, customErrors.ErrNotFound
	}
	return target, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "portalname" {
				return customErrors.NewValidation(nameFieldDetail[fe.StructField()])
			}
		}
	}
	return customErrors.NewValidation(err.Error())
}
