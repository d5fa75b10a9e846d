package handler

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/info-321/React-Email-Dashboard/config"
	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
	"github.com/info-321/React-Email-Dashboard/pkg/goutil"
	"github.com/info-321/React-Email-Dashboard/pkg/validator"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type LoginRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (m *LoginRequest) GetUsername() string {
	if m != nil && m.Username != nil {
		return *m.Username
	}
	return ""
}

func (m *LoginRequest) GetPassword() string {
	if m != nil && m.Password != nil {
		return *m.Password
	}
	return ""
}

type LoginResponse struct {
	Success  *bool   `json:"success,omitempty"`
	Username *string `json:"username,omitempty"`
}

var LoginValidator = validator.MustForm(map[string]validator.Validator{
	"username": &validator.String{UnsetZero: true},
	"password": &validator.String{UnsetZero: true},
})

// Login checks the submitted credentials against the configured admin
// account. Both failure modes return the same error so the response does not
// reveal which field was wrong.
func (h *AuthHandler) Login(ctx context.Context, req *LoginRequest, res *LoginResponse) error {
	if err := LoginValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	admin := h.cfg.Admin

	userOk := subtle.ConstantTimeCompare([]byte(req.GetUsername()), []byte(admin.Username)) == 1

	var passOk bool
	if admin.PasswordHash != "" {
		passOk = goutil.CompareBCrypt(admin.PasswordHash, req.GetPassword()) == nil
	} else {
		passOk = subtle.ConstantTimeCompare([]byte(req.GetPassword()), []byte(admin.Password)) == 1
	}

	if !userOk || !passOk {
		log.Ctx(ctx).Warn().Msgf("failed login attempt, username: %s", req.GetUsername())
		return errutil.UnauthorizedError(ErrInvalidCredentials)
	}

	res.Success = goutil.Bool(true)
	res.Username = goutil.String(admin.Username)

	return nil
}
