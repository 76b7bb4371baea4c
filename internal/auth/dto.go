package auth

import (
	"time"

	"github.com/angelmondragon/warehousepos-backend/internal/users"
)

const tokenTypeBearer = "Bearer"

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// RefreshRequest carries the refresh token paired with the presented access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is what a till stores after login or refresh. ExpiresAt tells
// it when to refresh before the next request fails with 401.
type TokenPair struct {
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type LoginResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}

type RefreshResponse struct {
	TokenPair
}
