package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// PostgresUserRepo runs every call in its own transaction; gorm commits when
// the callback returns nil and rolls back on an error or a panic.
type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	return user, nil
}

func (p *PostgresUserRepo) GetUserByLogin(ctx context.Context, login string) (model.User, error) {
	return p.first(ctx, "GetUserByLogin", "login = ?", login)
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return p.first(ctx, "GetUserByID", "id = ?", id)
}

// UpdateUser changes only active users and returns the id it touched.
func (p *PostgresUserRepo) UpdateUser(ctx context.Context, id uuid.UUID, upd model.UserUpdate) (uuid.UUID, error) {
	if upd.Empty() {
		return uuid.Nil, customErrors.NewInvalidArgument("empty update")
	}
	return p.updateActive(ctx, "UpdateUser", id, upd.Columns())
}

// SoftDeleteUser flips is_active to false. Deleting an inactive user is a miss.
func (p *PostgresUserRepo) SoftDeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return p.updateActive(ctx, "SoftDeleteUser", id, map[string]any{"is_active": false})
}

func (p *PostgresUserRepo) first(ctx context.Context, op, query string, arg any) (model.User, error) {
	var u model.User
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where(query, arg).First(&u).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}
	return u, nil
}

func (p *PostgresUserRepo) updateActive(ctx context.Context, op string, id uuid.UUID, cols map[string]any) (uuid.UUID, error) {
	var affected int64
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND is_active = ?", id, true).
			Updates(cols)
		affected = res.RowsAffected
		return res.Error
	})
	switch {
	case err != nil && isUniqueViolation(err):
		return uuid.Nil, customErrors.ErrAlreadyExists
	case err != nil:
		return uuid.Nil, customErrors.WrapInternal(err, op)
	case affected == 0:
		return uuid.Nil, customErrors.ErrNotFound
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
