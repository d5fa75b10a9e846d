package handler

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
	"github.com/info-321/React-Email-Dashboard/pkg/validator"
	"github.com/info-321/React-Email-Dashboard/repo"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type EmailHandler struct {
	emailRepo *repo.EmailListRepo
}

func NewEmailHandler(emailRepo *repo.EmailListRepo) *EmailHandler {
	return &EmailHandler{emailRepo: emailRepo}
}

type GetEmailsRequest struct{}

type GetEmailsResponse struct {
	Emails []string `json:"emails"`
}

func (h *EmailHandler) GetEmails(_ context.Context, _ *GetEmailsRequest, res *GetEmailsResponse) error {
	emails, err := h.emailRepo.GetAll()
	if err != nil {
		return errutil.InternalServerError(err)
	}

	res.Emails = emails

	return nil
}

type AddEmailRequest struct {
	Email *string `json:"email,omitempty"`
}

func (m *AddEmailRequest) GetEmail() string {
	if m != nil && m.Email != nil {
		return *m.Email
	}
	return ""
}

type AddEmailResponse struct {
	Emails []string `json:"emails"`
}

var AddEmailValidator = validator.MustForm(map[string]validator.Validator{
	"email": &validator.String{UnsetZero: true, Regex: emailRegex},
})

func (h *EmailHandler) AddEmail(ctx context.Context, req *AddEmailRequest, res *AddEmailResponse) error {
	if err := AddEmailValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	emails, err := h.emailRepo.Add(req.GetEmail())
	if err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			return errutil.ConflictError(err)
		}
		return errutil.InternalServerError(err)
	}

	log.Ctx(ctx).Info().Msgf("added email to allow-list, email: %s", req.GetEmail())

	res.Emails = emails

	return nil
}

type RemoveEmailRequest struct {
	Email *string `json:"email,omitempty" schema:"email"`
}

func (m *RemoveEmailRequest) GetEmail() string {
	if m != nil && m.Email != nil {
		return *m.Email
	}
	return ""
}

type RemoveEmailResponse struct {
	Emails []string `json:"emails"`
}

var RemoveEmailValidator = validator.MustForm(map[string]validator.Validator{
	"email": &validator.String{UnsetZero: true},
})

func (h *EmailHandler) RemoveEmail(ctx context.Context, req *RemoveEmailRequest, res *RemoveEmailResponse) error {
	if err := RemoveEmailValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	emails, err := h.emailRepo.Remove(req.GetEmail())
	if err != nil {
		if errors.Is(err, repo.ErrEmailNotFound) {
			return errutil.NotFoundError(err)
		}
		return errutil.InternalServerError(err)
	}

	log.Ctx(ctx).Info().Msgf("removed email from allow-list, email: %s", req.GetEmail())

	res.Emails = emails

	return nil
}
