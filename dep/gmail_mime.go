package dep

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNoRecipients = errors.New("message has no recipients")

// OutgoingMessage is a message composed on the dashboard, ready to be
// rendered into raw RFC 2822 form.
type OutgoingMessage struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	BodyPlain   string
	BodyHtml    string
	Attachments []*OutgoingAttachment
}

// OutgoingAttachment carries base64-encoded file content from the client.
type OutgoingAttachment struct {
	Filename    string
	ContentType string
	Data        string
}

type decodedAttachment struct {
	filename    string
	contentType string
	data        []byte
}

// BuildRawMessage renders the message in raw RFC 2822 form: a single-part
// text message when there are no attachments, multipart/mixed otherwise.
// Attachments whose data fails to decode are skipped rather than failing the
// whole send. The html body wins when both bodies are set.
func BuildRawMessage(msg *OutgoingMessage) ([]byte, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	contentType := "text/plain"
	body := msg.BodyPlain
	if msg.BodyHtml != "" {
		contentType = "text/html"
		body = msg.BodyHtml
	}

	atts := make([]*decodedAttachment, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		if att == nil || att.Data == "" {
			continue
		}
		data, err := decodeAttachmentData(att.Data)
		if err != nil {
			continue
		}

		attType := att.ContentType
		if attType == "" {
			attType = "application/octet-stream"
		}
		filename := att.Filename
		if filename == "" {
			filename = "attachment"
		}

		atts = append(atts, &decodedAttachment{
			filename:    filename,
			contentType: attType,
			data:        data,
		})
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	if len(msg.Cc) > 0 {
		sb.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(msg.Cc, ", ")))
	}
	if len(msg.Bcc) > 0 {
		sb.WriteString(fmt.Sprintf("Bcc: %s\r\n", strings.Join(msg.Bcc, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")

	if len(atts) == 0 {
		sb.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
		sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(body)
		sb.WriteString("\r\n")
		return []byte(sb.String()), nil
	}

	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	sb.WriteString("\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	for _, att := range atts {
		sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		sb.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.contentType, att.filename))
		sb.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", att.filename))
		sb.WriteString("Content-Transfer-Encoding: base64\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(wrapBase64(base64.StdEncoding.EncodeToString(att.data)))
		sb.WriteString("\r\n")
	}

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(sb.String()), nil
}

// decodeAttachmentData accepts standard or url-safe base64, with or without
// padding, and data-url prefixed payloads.
func decodeAttachmentData(s string) ([]byte, error) {
	if idx := strings.Index(s, "base64,"); idx >= 0 {
		s = s[idx+len("base64,"):]
	}
	s = strings.TrimSpace(s)

	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// wrapBase64 folds encoded content at 76 columns per RFC 2045.
func wrapBase64(s string) string {
	const lineLen = 76

	var sb strings.Builder
	for len(s) > lineLen {
		sb.WriteString(s[:lineLen])
		sb.WriteString("\r\n")
		s = s[lineLen:]
	}
	sb.WriteString(s)
	return sb.String()
}
