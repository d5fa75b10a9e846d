package dep

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawMessage_PlainBody(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:      "admin@example.com",
		To:        []string{"a@example.com", "b@example.com"},
		Subject:   "Hello",
		BodyPlain: "plain body",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: admin@example.com\r\n")
	assert.Contains(t, s, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, s, "Subject: Hello\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=\"UTF-8\"")
	assert.Contains(t, s, "plain body")
	assert.NotContains(t, s, "Cc:")

	// single-part when there is nothing to attach
	assert.NotContains(t, s, "multipart/mixed")
}

func TestBuildRawMessage_HtmlWins(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From:      "admin@example.com",
		To:        []string{"a@example.com"},
		BodyPlain: "plain",
		BodyHtml:  "<b>html</b>",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-Type: text/html; charset=\"UTF-8\"")
	assert.Contains(t, s, "<b>html</b>")
}

func TestBuildRawMessage_Attachment(t *testing.T) {
	content := []byte("attachment bytes")

	raw, err := BuildRawMessage(&OutgoingMessage{
		From: "admin@example.com",
		To:   []string{"a@example.com"},
		Attachments: []*OutgoingAttachment{
			{
				Filename:    "report.txt",
				ContentType: "text/plain",
				Data:        base64.StdEncoding.EncodeToString(content),
			},
		},
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-Type: multipart/mixed;")
	assert.Contains(t, s, "Content-Disposition: attachment; filename=\"report.txt\"")
	assert.Contains(t, s, "Content-Transfer-Encoding: base64")
	assert.Contains(t, s, base64.StdEncoding.EncodeToString(content))
}

func TestBuildRawMessage_DataURLAttachment(t *testing.T) {
	content := []byte{0x01, 0x02, 0x03}
	data := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(content)

	raw, err := BuildRawMessage(&OutgoingMessage{
		From: "admin@example.com",
		To:   []string{"a@example.com"},
		Attachments: []*OutgoingAttachment{
			{Filename: "blob.bin", Data: data},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "filename=\"blob.bin\"")
}

func TestBuildRawMessage_SkipsBadAttachment(t *testing.T) {
	raw, err := BuildRawMessage(&OutgoingMessage{
		From: "admin@example.com",
		To:   []string{"a@example.com"},
		Attachments: []*OutgoingAttachment{
			{Filename: "bad.bin", Data: "!!! not base64 !!!"},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bad.bin")

	// every attachment skipped leaves a single-part message
	assert.NotContains(t, string(raw), "multipart/mixed")
}

func TestBuildRawMessage_NoRecipients(t *testing.T) {
	_, err := BuildRawMessage(&OutgoingMessage{From: "admin@example.com"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestWrapBase64(t *testing.T) {
	wrapped := wrapBase64(strings.Repeat("A", 200))

	for _, line := range strings.Split(wrapped, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
