package httpdto

import "account-service/internal/domain/account"

// RegisterRequest is the text part of the multipart body for POST /v1/users/register.
// Files arrive separately as "avatar" and "coverImage".
type RegisterRequest struct {
	FullName string `form:"fullName" json:"fullName"`
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// LoginRequest is used for POST /v1/users/login (JSON or form).
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// LoginResponse is the data part of a successful login.
type LoginResponse struct {
	User         account.Profile `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}
