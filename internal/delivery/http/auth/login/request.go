package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var errMissingCredentials = errors.New("username and password are required")

var validate = validator.New(validator.WithRequiredStructEnabled())

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func (req *LoginRequest) validate() error {
	if err := validate.Struct(req); err != nil {
		return errMissingCredentials
	}

	return nil
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
