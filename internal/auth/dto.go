package auth

import (
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
)

// RegisterRequest is the registration payload. A role sent by the client is
// accepted by the decoder but never applied.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,alphanum"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72,password"`
	Role     *string `json:"role,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the object returned by a successful login.
type LoginResult struct {
	Token pkgAuth.TokenPair `json:"token"`
}
