package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/info-321/React-Email-Dashboard/dep"
	"github.com/info-321/React-Email-Dashboard/entity"
	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
	"github.com/info-321/React-Email-Dashboard/pkg/goutil"
	"github.com/info-321/React-Email-Dashboard/pkg/httputil"
	"github.com/info-321/React-Email-Dashboard/pkg/validator"
	"github.com/info-321/React-Email-Dashboard/repo"
)

var (
	ErrMailboxNotAllowed = errors.New("mailbox is not on the allow-list")
	ErrUnknownBulkAction = errors.New("unknown bulk action")
)

// bulkActions maps a dashboard action onto the Gmail label changes it
// applies.
var bulkActions = map[string]struct {
	Add    []string
	Remove []string
}{
	"archive": {Remove: []string{"INBOX"}},
	"delete":  {Add: []string{"TRASH"}, Remove: []string{"INBOX"}},
	"star":    {Add: []string{"STARRED"}},
	"unstar":  {Remove: []string{"STARRED"}},
}

type MailboxHandler struct {
	factory   *dep.GmailFactory
	emailRepo *repo.EmailListRepo
}

func NewMailboxHandler(factory *dep.GmailFactory, emailRepo *repo.EmailListRepo) *MailboxHandler {
	return &MailboxHandler{
		factory:   factory,
		emailRepo: emailRepo,
	}
}

// serviceFor gates every mailbox operation on the allow-list before
// impersonating the address.
func (h *MailboxHandler) serviceFor(ctx context.Context, mailbox string) (*dep.MailboxService, error) {
	if !emailRegex.MatchString(mailbox) {
		return nil, errutil.BadRequestError(fmt.Errorf("invalid mailbox address: %s", mailbox))
	}

	allowed, err := h.emailRepo.Contains(mailbox)
	if err != nil {
		return nil, errutil.InternalServerError(err)
	}
	if !allowed {
		return nil, errutil.ForbiddenError(ErrMailboxNotAllowed)
	}

	return h.factory.ForMailbox(ctx, mailbox)
}

type GetOverviewRequest struct {
	Mailbox *string `json:"mailbox,omitempty" schema:"mailbox"`
}

func (m *GetOverviewRequest) GetMailbox() string {
	if m != nil && m.Mailbox != nil {
		return *m.Mailbox
	}
	return ""
}

type GetOverviewResponse struct {
	EmailAddress  *string                `json:"emailAddress,omitempty"`
	MessagesTotal *int64                 `json:"messagesTotal,omitempty"`
	ThreadsTotal  *int64                 `json:"threadsTotal,omitempty"`
	Labels        []*entity.MailboxLabel `json:"labels"`
	Counts        map[string]int64       `json:"counts"`
}

var GetOverviewValidator = validator.MustForm(map[string]validator.Validator{
	"mailbox": &validator.String{UnsetZero: true},
})

func (h *MailboxHandler) GetOverview(ctx context.Context, req *GetOverviewRequest, res *GetOverviewResponse) error {
	if err := GetOverviewValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	svc, err := h.serviceFor(ctx, req.GetMailbox())
	if err != nil {
		return err
	}

	overview, err := svc.Overview(ctx)
	if err != nil {
		return err
	}

	res.EmailAddress = goutil.String(overview.EmailAddress)
	res.MessagesTotal = goutil.Int64(overview.MessagesTotal)
	res.ThreadsTotal = goutil.Int64(overview.ThreadsTotal)
	res.Labels = overview.Labels
	res.Counts = overview.Counts

	return nil
}

type GetMessagesRequest struct {
	Mailbox    *string `json:"mailbox,omitempty" schema:"mailbox"`
	Folder     *string `json:"folder,omitempty" schema:"folder"`
	MaxResults *uint32 `json:"maxResults,omitempty" schema:"maxResults"`
	PageToken  *string `json:"pageToken,omitempty" schema:"pageToken"`
	Query      *string `json:"query,omitempty" schema:"query"`
}

func (m *GetMessagesRequest) GetMailbox() string {
	if m != nil && m.Mailbox != nil {
		return *m.Mailbox
	}
	return ""
}

func (m *GetMessagesRequest) GetFolder() string {
	if m != nil && m.Folder != nil {
		return *m.Folder
	}
	return "inbox"
}

func (m *GetMessagesRequest) GetMaxResults() uint32 {
	if m != nil && m.MaxResults != nil {
		if *m.MaxResults > dep.MaxMaxResults {
			return dep.MaxMaxResults
		}
		return *m.MaxResults
	}
	return dep.DefaultMaxResults
}

func (m *GetMessagesRequest) GetPageToken() string {
	if m != nil && m.PageToken != nil {
		return *m.PageToken
	}
	return ""
}

func (m *GetMessagesRequest) GetQuery() string {
	if m != nil && m.Query != nil {
		return *m.Query
	}
	return ""
}

type GetMessagesResponse struct {
	Messages           []*entity.Message `json:"messages"`
	NextPageToken      *string           `json:"nextPageToken,omitempty"`
	ResultSizeEstimate *int64            `json:"resultSizeEstimate,omitempty"`
}

var GetMessagesValidator = validator.MustForm(map[string]validator.Validator{
	"mailbox":    &validator.String{UnsetZero: true},
	"folder":     &validator.String{Optional: true, UnsetZero: true},
	"maxResults": &validator.UInt32{Optional: true},
	"pageToken":  &validator.String{Optional: true},
	"query":      &validator.String{Optional: true},
})

func (h *MailboxHandler) GetMessages(ctx context.Context, req *GetMessagesRequest, res *GetMessagesResponse) error {
	if err := GetMessagesValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	svc, err := h.serviceFor(ctx, req.GetMailbox())
	if err != nil {
		return err
	}

	page, err := svc.FetchMessages(
		ctx,
		req.GetFolder(),
		int64(req.GetMaxResults()),
		req.GetPageToken(),
		req.GetQuery(),
	)
	if err != nil {
		return err
	}

	res.Messages = page.Messages
	res.ResultSizeEstimate = goutil.Int64(page.ResultSizeEstimate)
	if page.NextPageToken != "" {
		res.NextPageToken = goutil.String(page.NextPageToken)
	}

	return nil
}

type BulkModifyRequest struct {
	Mailbox    *string  `json:"mailbox,omitempty" schema:"mailbox"`
	Action     *string  `json:"action,omitempty"`
	MessageIds []string `json:"messageIds,omitempty"`
}

func (m *BulkModifyRequest) GetMailbox() string {
	if m != nil && m.Mailbox != nil {
		return *m.Mailbox
	}
	return ""
}

func (m *BulkModifyRequest) GetAction() string {
	if m != nil && m.Action != nil {
		return *m.Action
	}
	return ""
}

type BulkModifyResponse struct {
	Updated *uint32 `json:"updated,omitempty"`
}

var BulkModifyValidator = validator.MustForm(map[string]validator.Validator{
	"mailbox":    &validator.String{UnsetZero: true},
	"action":     &validator.String{UnsetZero: true},
	"messageIds": &validator.Slice{MinLen: 1, Validator: &validator.String{UnsetZero: true}},
})

func (h *MailboxHandler) BulkModify(ctx context.Context, req *BulkModifyRequest, res *BulkModifyResponse) error {
	if err := BulkModifyValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	action, ok := bulkActions[req.GetAction()]
	if !ok {
		return errutil.BadRequestError(fmt.Errorf("%w: %s", ErrUnknownBulkAction, req.GetAction()))
	}

	svc, err := h.serviceFor(ctx, req.GetMailbox())
	if err != nil {
		return err
	}

	if err := svc.BatchModify(ctx, req.MessageIds, action.Add, action.Remove); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Msgf("bulk modify done, mailbox: %s, action: %s, count: %d",
		req.GetMailbox(), req.GetAction(), len(req.MessageIds))

	res.Updated = goutil.Uint32(uint32(len(req.MessageIds)))

	return nil
}

type SendAttachment struct {
	Filename    *string `json:"filename,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
	Data        *string `json:"data,omitempty"`
}

func (m *SendAttachment) GetFilename() string {
	if m != nil && m.Filename != nil {
		return *m.Filename
	}
	return ""
}

func (m *SendAttachment) GetContentType() string {
	if m != nil && m.ContentType != nil {
		return *m.ContentType
	}
	return ""
}

func (m *SendAttachment) GetData() string {
	if m != nil && m.Data != nil {
		return *m.Data
	}
	return ""
}

// RecipientList accepts either a JSON list of addresses or a single
// comma-separated string.
type RecipientList []string

func (r *RecipientList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*r = trimRecipients(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = trimRecipients(strings.Split(s, ","))

	return nil
}

func trimRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type SendMessageRequest struct {
	Mailbox     *string           `json:"mailbox,omitempty" schema:"mailbox"`
	To          RecipientList     `json:"to,omitempty"`
	Cc          RecipientList     `json:"cc,omitempty"`
	Bcc         RecipientList     `json:"bcc,omitempty"`
	Subject     *string           `json:"subject,omitempty"`
	Body        *string           `json:"body,omitempty"`
	BodyPlain   *string           `json:"bodyPlain,omitempty"`
	BodyHtml    *string           `json:"bodyHtml,omitempty"`
	Attachments []*SendAttachment `json:"attachments,omitempty"`
}

func (m *SendMessageRequest) GetMailbox() string {
	if m != nil && m.Mailbox != nil {
		return *m.Mailbox
	}
	return ""
}

func (m *SendMessageRequest) GetSubject() string {
	if m != nil && m.Subject != nil {
		return *m.Subject
	}
	return ""
}

func (m *SendMessageRequest) GetBody() string {
	if m != nil && m.Body != nil {
		return *m.Body
	}
	return ""
}

func (m *SendMessageRequest) GetBodyPlain() string {
	if m != nil && m.BodyPlain != nil {
		return *m.BodyPlain
	}
	return ""
}

func (m *SendMessageRequest) GetBodyHtml() string {
	if m != nil && m.BodyHtml != nil {
		return *m.BodyHtml
	}
	return ""
}

type SendMessageResponse struct {
	MessageId *string `json:"messageId,omitempty"`
}

var SendMessageValidator = validator.MustForm(map[string]validator.Validator{
	"mailbox": &validator.String{UnsetZero: true},
	"to":      &validator.Slice{MinLen: 1, Validator: &validator.String{UnsetZero: true, Regex: emailRegex}},
	"cc":      &validator.Slice{Optional: true, Validator: &validator.String{UnsetZero: true, Regex: emailRegex}},
	"bcc":     &validator.Slice{Optional: true, Validator: &validator.String{UnsetZero: true, Regex: emailRegex}},
	"subject": &validator.String{UnsetZero: true},
	"body":    &validator.String{Optional: true},
})

func (h *MailboxHandler) SendMessage(ctx context.Context, req *SendMessageRequest, res *SendMessageResponse) error {
	if err := SendMessageValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	bodyPlain := req.GetBodyPlain()
	if bodyPlain == "" {
		bodyPlain = req.GetBody()
	}
	if bodyPlain == "" && req.GetBodyHtml() == "" {
		return errutil.BadRequestError(errors.New("message body is required"))
	}

	svc, err := h.serviceFor(ctx, req.GetMailbox())
	if err != nil {
		return err
	}

	attachments := make([]*dep.OutgoingAttachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, &dep.OutgoingAttachment{
			Filename:    att.GetFilename(),
			ContentType: att.GetContentType(),
			Data:        att.GetData(),
		})
	}

	raw, err := dep.BuildRawMessage(&dep.OutgoingMessage{
		From:        req.GetMailbox(),
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.GetSubject(),
		BodyPlain:   bodyPlain,
		BodyHtml:    req.GetBodyHtml(),
		Attachments: attachments,
	})
	if err != nil {
		return errutil.BadRequestError(err)
	}

	messageID, err := svc.Send(ctx, raw)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().Msgf("message sent, mailbox: %s, message_id: %s", req.GetMailbox(), messageID)

	res.MessageId = goutil.String(messageID)

	return nil
}

// DownloadAttachment streams one attachment body. It bypasses the JSON
// envelope so the browser receives the file directly.
func (h *MailboxHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	mailbox := vars["mailbox"]
	messageID := vars["messageId"]
	attachmentID := vars["attachmentId"]

	if messageID == "" || attachmentID == "" {
		httputil.ReturnServerResponse(w, nil, errutil.BadRequestError(errors.New("missing message or attachment id")))
		return
	}

	svc, err := h.serviceFor(ctx, mailbox)
	if err != nil {
		httputil.ReturnServerResponse(w, nil, err)
		return
	}

	data, err := svc.Attachment(ctx, messageID, attachmentID)
	if err != nil {
		httputil.ReturnServerResponse(w, nil, err)
		return
	}

	q := r.URL.Query()
	httputil.ReturnFileDownload(w, q.Get("filename"), q.Get("mimeType"), data)
}
