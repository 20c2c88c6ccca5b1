package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// LoginDTO is the OAuth2 password form posted to /login/.
type LoginDTO struct {
	Login    string `form:"username" validate:"required,max=255"`
	Password string `form:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `validate:"required"`
}

type LogoutDTO struct {
	RefreshToken string
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CreateUserDTO struct {
	Login      string `json:"login"       validate:"required,min=1,max=255"`
	FirstName  string `json:"first_name"  validate:"required,portalname"`
	MiddleName string `json:"middle_name" validate:"required,portalname"`
	LastName   string `json:"last_name"   validate:"required,portalname"`
	Password   string `json:"password"    validate:"required,min=1,max=72"`
}

type UpdateUserDTO struct {
	Login      *string `json:"login"       validate:"omitempty,min=1,max=255"`
	FirstName  *string `json:"first_name"  validate:"omitempty,portalname"`
	MiddleName *string `json:"middle_name" validate:"omitempty,portalname"`
	LastName   *string `json:"last_name"   validate:"omitempty,portalname"`
}

type ShowUser struct {
	UserID   string `json:"user_id"`
	Login    string `json:"login"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type UpdatedUserResponse struct {
	UpdatedUserID string `json:"updated_user_id"`
}

type DeletedUserResponse struct {
	DeletedUserID string `json:"deleted_user_id"`
}

var nameRe = regexp.MustCompile(`^[а-яА-Яa-zA-Z\-]+$`)

// NewValidator returns a validator with the portal-specific tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("portalname", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	return v
}
