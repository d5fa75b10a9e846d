package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/info-321/React-Email-Dashboard/dep"
	"github.com/info-321/React-Email-Dashboard/pkg/goutil"
)

func TestSendMessageRequest_StringRecipients(t *testing.T) {
	var req SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"mailbox": "admin@example.com",
		"to": "a@example.com",
		"cc": "b@example.com, c@example.com",
		"subject": "Hello",
		"body": "hello there"
	}`), &req))

	assert.Equal(t, RecipientList{"a@example.com"}, req.To)
	assert.Equal(t, RecipientList{"b@example.com", "c@example.com"}, req.Cc)
	assert.Equal(t, "hello there", req.GetBody())

	assert.NoError(t, SendMessageValidator.Validate(&req))
}

func TestSendMessageRequest_ListRecipients(t *testing.T) {
	var req SendMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"to": ["a@example.com", " b@example.com "]}`), &req))

	assert.Equal(t, RecipientList{"a@example.com", "b@example.com"}, req.To)
}

func TestSendMessageValidator_MissingRecipients(t *testing.T) {
	err := SendMessageValidator.Validate(&SendMessageRequest{
		Mailbox: goutil.String("admin@example.com"),
		Subject: goutil.String("Hello"),
		Body:    goutil.String("hello there"),
	})
	assert.Error(t, err)
}

func TestGetMessagesRequest_MaxResultsClamped(t *testing.T) {
	req := &GetMessagesRequest{
		Mailbox:    goutil.String("admin@example.com"),
		MaxResults: goutil.Uint32(500),
	}

	// oversized values are clamped, not rejected
	require.NoError(t, GetMessagesValidator.Validate(req))
	assert.Equal(t, uint32(dep.MaxMaxResults), req.GetMaxResults())

	assert.Equal(t, uint32(dep.DefaultMaxResults), new(GetMessagesRequest).GetMaxResults())
}
