package model

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Login        string    `gorm:"uniqueIndex;not null"`
	FirstName    string    `gorm:"not null"`
	MiddleName   string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	PasswordHash string    `gorm:"column:hashed_password;not null"`
	Role         Role      `gorm:"type:varchar(32);not null"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// UserUpdate carries the optional fields of a profile update. Nil means "leave as is".
type UserUpdate struct {
	Login      *string
	FirstName  *string
	MiddleName *string
	LastName   *string
	Role       *Role
}

func (u UserUpdate) Empty() bool {
	return u.Login == nil && u.FirstName == nil && u.MiddleName == nil && u.LastName == nil && u.Role == nil
}

// Columns maps the set fields to their column names.
func (u UserUpdate) Columns() map[string]any {
	cols := make(map[string]any, 5)
	if u.Login != nil {
		cols["login"] = *u.Login
	}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.MiddleName != nil {
		cols["middle_name"] = *u.MiddleName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Role != nil {
		cols["role"] = *u.Role
	}
	return cols
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	UserId          uuid.UUID
	RefreshTokenJTI string
}
