package model

import (
	"time"

	"github.com/Astemirdum/library-catalog/pkg/auth"
)

type User struct {
	ID           int64      `json:"userId" db:"id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Email        string     `json:"email" db:"email"`
	Role         auth.Role  `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
}

type UserCreate struct {
	Username string    `json:"username" validate:"required,min=3,max=100"`
	Password string    `json:"password" validate:"required,min=6,max=72"`
	Email    string    `json:"email" validate:"required,email,max=255"`
	Role     auth.Role `json:"role" validate:"required,oneof=ADMIN LIBRARIAN STAFF"`
	IsActive *bool     `json:"isActive"`
}

type UserUpdate struct {
	Username string    `json:"username" validate:"required,min=3,max=100"`
	Password string    `json:"password" validate:"omitempty,min=6,max=72"`
	Email    string    `json:"email" validate:"required,email,max=255"`
	Role     auth.Role `json:"role" validate:"required,oneof=ADMIN LIBRARIAN STAFF"`
	IsActive *bool     `json:"isActive"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       int64     `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         auth.Role `json:"role"`
}
