package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a registered account. PasswordHash never leaves the package in a response.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Claims are the JWT claims carried by an access token. The subject is the username.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" example:"alice"`
	Password string `json:"password" validate:"required,min=8,max=50,password" example:"pasSword123@"`
}

// LoginRequest is the body of POST /auth/login. It is validated with the same
// rules as registration.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" example:"alice"`
	Password string `json:"password" validate:"required,min=8,max=50,password" example:"pasSword123@"`
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}
