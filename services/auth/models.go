package authservice

import "inventory/models"

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Name            string `json:"name"`
	Role            string `json:"role"`
}

type IDTokenLoginReq struct {
	IDToken string `json:"id_token" validate:"required"`
}

type SessionRes struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}
