package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
	"github.com/info-321/React-Email-Dashboard/pkg/goutil"
	"github.com/info-321/React-Email-Dashboard/repo"
)

func newTestEmailHandler(t *testing.T) *EmailHandler {
	t.Helper()
	return NewEmailHandler(repo.NewEmailListRepo(filepath.Join(t.TempDir(), "emails.json")))
}

func TestGetEmails_Empty(t *testing.T) {
	h := newTestEmailHandler(t)

	res := new(GetEmailsResponse)
	require.NoError(t, h.GetEmails(context.Background(), new(GetEmailsRequest), res))
	assert.Empty(t, res.Emails)
}

func TestAddEmail(t *testing.T) {
	h := newTestEmailHandler(t)

	res := new(AddEmailResponse)
	err := h.AddEmail(context.Background(), &AddEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, res)

	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, res.Emails)
}

func TestAddEmail_Invalid(t *testing.T) {
	h := newTestEmailHandler(t)

	for _, email := range []string{"", "not-an-email", "missing@tld"} {
		err := h.AddEmail(context.Background(), &AddEmailRequest{
			Email: goutil.String(email),
		}, new(AddEmailResponse))

		require.Error(t, err, email)
		code, _ := errutil.ParseHttpError(err)
		assert.Equal(t, http.StatusBadRequest, code)
	}
}

func TestAddEmail_Duplicate(t *testing.T) {
	h := newTestEmailHandler(t)

	require.NoError(t, h.AddEmail(context.Background(), &AddEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, new(AddEmailResponse)))

	err := h.AddEmail(context.Background(), &AddEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, new(AddEmailResponse))

	require.Error(t, err)
	code, _ := errutil.ParseHttpError(err)
	assert.Equal(t, http.StatusConflict, code)

	// list unchanged
	res := new(GetEmailsResponse)
	require.NoError(t, h.GetEmails(context.Background(), new(GetEmailsRequest), res))
	assert.Equal(t, []string{"bob@example.com"}, res.Emails)
}

func TestRemoveEmail(t *testing.T) {
	h := newTestEmailHandler(t)

	require.NoError(t, h.AddEmail(context.Background(), &AddEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, new(AddEmailResponse)))

	res := new(RemoveEmailResponse)
	err := h.RemoveEmail(context.Background(), &RemoveEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, res)

	require.NoError(t, err)
	assert.Empty(t, res.Emails)
}

func TestRemoveEmail_NotFound(t *testing.T) {
	h := newTestEmailHandler(t)

	require.NoError(t, h.AddEmail(context.Background(), &AddEmailRequest{
		Email: goutil.String("bob@example.com"),
	}, new(AddEmailResponse)))

	err := h.RemoveEmail(context.Background(), &RemoveEmailRequest{
		Email: goutil.String("nobody@example.com"),
	}, new(RemoveEmailResponse))

	require.Error(t, err)
	code, _ := errutil.ParseHttpError(err)
	assert.Equal(t, http.StatusNotFound, code)

	// list unchanged
	res := new(GetEmailsResponse)
	require.NoError(t, h.GetEmails(context.Background(), new(GetEmailsRequest), res))
	assert.Equal(t, []string{"bob@example.com"}, res.Emails)
}
