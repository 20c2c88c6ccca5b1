package service_test

import (
	"context"
	"testing"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/service"
	authErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newUserSvc() (appsvc.UserService, *userRepoStub, *password.Hasher) {
	ur := newUserRepoStub()
	h := password.NewHasher("pepper", fastParams)
	return appsvc.NewUserService(ur, h, nil, dto.NewValidator()), ur, h
}

func seed(ur *userRepoStub, role model.Role) model.User {
	u := model.User{ID: uuid.New(), Login: uuid.NewString(), Role: role, IsActive: true}
	ur.users[u.ID] = u
	return u
}

func ptr(s string) *string { return &s }

func validCreate() dto.CreateUserDTO {
	return dto.CreateUserDTO{
		Login:      "ivanov",
		FirstName:  "Иван",
		MiddleName: "Ivanovich",
		LastName:   "Петров-Водкин",
		Password:   "secret",
	}
}

func TestUserService_Create(t *testing.T) {
	svc, ur, h := newUserSvc()
	ctx := context.Background()

	u, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, u.ID)
	require.Equal(t, model.RoleUser, u.Role)
	require.True(t, u.IsActive)
	require.NotEqual(t, "secret", u.PasswordHash)
	require.True(t, h.Verify("secret", ur.users[u.ID].PasswordHash))

	_, err = svc.Create(ctx, validCreate())
	require.True(t, authErrors.IsAlreadyExists(err))
}

func TestUserService_CreateNameValidation(t *testing.T) {
	svc, _, _ := newUserSvc()
	ctx := context.Background()

	cases := []struct {
		mutate func(*dto.CreateUserDTO)
		detail string
	}{
		{func(d *dto.CreateUserDTO) { d.FirstName = "Ivan1" }, "Name incorrect"},
		{func(d *dto.CreateUserDTO) { d.MiddleName = "I van" }, "Surname incorrect"},
		{func(d *dto.CreateUserDTO) { d.LastName = "O'Neil" }, "Lastname incorrect"},
	}
	for _, tc := range cases {
		in := validCreate()
		tc.mutate(&in)
		_, err := svc.Create(ctx, in)
		require.True(t, authErrors.IsValidation(err))
		require.Equal(t, tc.detail, authErrors.ValidationDetail(err))
	}

	in := validCreate()
	in.Password = ""
	_, err := svc.Create(ctx, in)
	require.True(t, authErrors.IsValidation(err))
}

func TestUserService_Update(t *testing.T) {
	svc, ur, _ := newUserSvc()
	ctx := context.Background()
	admin := seed(ur, model.RoleAdmin)
	user := seed(ur, model.RoleUser)
	other := seed(ur, model.RoleUser)

	id, err := svc.Update(ctx, user, user.ID, dto.UpdateUserDTO{FirstName: ptr("Анна")})
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
	require.Equal(t, "Анна", ur.users[user.ID].FirstName)

	_, err = svc.Update(ctx, admin, user.ID, dto.UpdateUserDTO{Login: ptr("renamed")})
	require.NoError(t, err)
	require.Equal(t, "renamed", ur.users[user.ID].Login)

	_, err = svc.Update(ctx, other, user.ID, dto.UpdateUserDTO{LastName: ptr("X")})
	require.True(t, authErrors.IsForbidden(err))

	_, err = svc.Update(ctx, user, admin.ID, dto.UpdateUserDTO{LastName: ptr("X")})
	require.True(t, authErrors.IsForbidden(err))
	require.Equal(t, appsvc.RuleAdminProtected, authErrors.ForbiddenRule(err))

	_, err = svc.Update(ctx, user, user.ID, dto.UpdateUserDTO{})
	require.True(t, authErrors.IsValidation(err))

	_, err = svc.Update(ctx, user, user.ID, dto.UpdateUserDTO{FirstName: ptr("42")})
	require.Equal(t, "Name incorrect", authErrors.ValidationDetail(err))

	_, err = svc.Update(ctx, admin, uuid.New(), dto.UpdateUserDTO{FirstName: ptr("Anna")})
	require.True(t, authErrors.IsNotFound(err))
}

func TestUserService_Delete(t *testing.T) {
	svc, ur, _ := newUserSvc()
	ctx := context.Background()
	admin := seed(ur, model.RoleAdmin)
	moderator := seed(ur, model.RoleModerator)
	otherAdmin := seed(ur, model.RoleAdmin)

	_, err := svc.Delete(ctx, moderator, admin.ID)
	require.True(t, authErrors.IsForbidden(err))

	_, err = svc.Delete(ctx, admin, otherAdmin.ID)
	require.True(t, authErrors.IsForbidden(err))

	id, err := svc.Delete(ctx, admin, moderator.ID)
	require.NoError(t, err)
	require.Equal(t, moderator.ID, id)
	require.False(t, ur.users[moderator.ID].IsActive)

	_, err = svc.Delete(ctx, admin, moderator.ID)
	require.True(t, authErrors.IsNotFound(err))
}

func TestUserService_AdminPrivilege(t *testing.T) {
	svc, ur, _ := newUserSvc()
	ctx := context.Background()
	admin := seed(ur, model.RoleAdmin)
	moderator := seed(ur, model.RoleModerator)

	_, err := svc.GrantAdmin(ctx, moderator, admin.ID)
	require.True(t, authErrors.IsForbidden(err))

	_, err = svc.GrantAdmin(ctx, admin, admin.ID)
	require.True(t, authErrors.IsInvalidArgument(err))

	_, err = svc.GrantAdmin(ctx, admin, moderator.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, ur.users[moderator.ID].Role)

	_, err = svc.GrantAdmin(ctx, admin, moderator.ID)
	require.True(t, authErrors.IsAlreadyExists(err))

	_, err = svc.RevokeAdmin(ctx, admin, moderator.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, ur.users[moderator.ID].Role)

	_, err = svc.RevokeAdmin(ctx, admin, moderator.ID)
	require.True(t, authErrors.IsAlreadyExists(err))

	_, err = svc.RevokeAdmin(ctx, admin, uuid.New())
	require.True(t, authErrors.IsNotFound(err))
}
