package repo

import (
	"context"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

// UserRepo is the record store. Each call runs in its own transaction.
// Missing or inactive rows surface as errors.ErrNotFound.
type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)

	GetUserByLogin(ctx context.Context, login string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	UpdateUser(ctx context.Context, id uuid.UUID, upd model.UserUpdate) (uuid.UUID, error)

	SoftDeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}
