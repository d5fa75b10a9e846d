package dep

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/info-321/React-Email-Dashboard/config"
	"github.com/info-321/React-Email-Dashboard/entity"
	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
)

const (
	DefaultMaxResults = 25
	MaxMaxResults     = 100

	// Upper bound on list pagination when counting messages for the
	// mailbox-derived analytics path.
	maxCountPages = 200

	gmailQueryLayout = "2006/01/02"
)

var ErrUnknownFolder = errors.New("unknown mailbox folder")

// FolderConfig maps a dashboard folder name onto Gmail. A folder is backed by
// either a label id or a search query; UseProfileTotal folders report the
// profile-wide message total instead of a label count.
type FolderConfig struct {
	LabelID         string
	Query           string
	UseProfileTotal bool
}

var FolderConfigs = map[string]FolderConfig{
	"inbox":   {LabelID: "INBOX"},
	"sent":    {LabelID: "SENT"},
	"drafts":  {LabelID: "DRAFT"},
	"starred": {LabelID: "STARRED"},
	"spam":    {LabelID: "SPAM"},
	"deleted": {LabelID: "TRASH"},
	"archive": {Query: "-in:trash -in:spam", UseProfileTotal: true},
}

// analyticsFolders drive the mailbox-derived analytics fallback.
var analyticsFolders = []string{"inbox", "sent", "deleted", "spam"}

// analyticsFolderAlias renames folders to the vocabulary the aggregation
// layer expects.
var analyticsFolderAlias = map[string]string{
	"deleted": "trash",
}

func KnownFolder(name string) (FolderConfig, bool) {
	fc, ok := FolderConfigs[strings.ToLower(name)]
	return fc, ok
}

type MailboxOverview struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
	Labels        []*entity.MailboxLabel
	Counts        map[string]int64
}

// GmailFactory builds per-mailbox Gmail services by impersonating the target
// address through domain-wide delegation. Credentials are read on every call
// so a rotated key file takes effect without a restart.
type GmailFactory struct {
	cfg config.Gmail
}

func NewGmailFactory(cfg config.Gmail) *GmailFactory {
	return &GmailFactory{cfg: cfg}
}

func (f *GmailFactory) ForMailbox(ctx context.Context, mailbox string) (*MailboxService, error) {
	data, err := os.ReadFile(f.cfg.ServiceAccountFile)
	if err != nil {
		return nil, errutil.InternalServerError(fmt.Errorf("read service account file: %w", err))
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, gmail.MailGoogleComScope)
	if err != nil {
		return nil, errutil.InternalServerError(fmt.Errorf("parse service account file: %w", err))
	}
	jwtConfig.Subject = mailbox

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, errutil.InternalServerError(fmt.Errorf("init gmail service: %w", err))
	}

	return &MailboxService{
		mailbox: mailbox,
		svc:     svc,
	}, nil
}

// MailboxService wraps one impersonated Gmail user. All calls address the
// special "me" user id, which Gmail resolves to the impersonated subject.
type MailboxService struct {
	mailbox string
	svc     *gmail.Service
}

func (m *MailboxService) Mailbox() string {
	return m.mailbox
}

func (m *MailboxService) Overview(ctx context.Context) (*MailboxOverview, error) {
	profile, err := m.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	listRes, err := m.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	return buildOverview(profile, listRes.Labels), nil
}

// buildOverview exposes the mailbox's full label list and derives the
// dashboard folder counts from it. Archive has no label of its own and
// reports the profile-wide total.
func buildOverview(profile *gmail.Profile, labels []*gmail.Label) *MailboxOverview {
	out := make([]*entity.MailboxLabel, 0, len(labels))
	totalsByID := make(map[string]int64, len(labels))
	for _, l := range labels {
		total := l.MessagesTotal
		totalsByID[l.Id] = total
		out = append(out, &entity.MailboxLabel{
			ID:            l.Id,
			Name:          l.Name,
			Type:          l.Type,
			MessagesTotal: &total,
		})
	}

	counts := make(map[string]int64, len(FolderConfigs))
	for name, fc := range FolderConfigs {
		if fc.UseProfileTotal {
			counts[name] = profile.MessagesTotal
			continue
		}
		counts[name] = totalsByID[fc.LabelID]
	}

	return &MailboxOverview{
		EmailAddress:  profile.EmailAddress,
		MessagesTotal: profile.MessagesTotal,
		ThreadsTotal:  profile.ThreadsTotal,
		Labels:        out,
		Counts:        counts,
	}
}

// MessagePage is one page of shaped messages.
type MessagePage struct {
	Messages           []*entity.Message
	NextPageToken      string
	ResultSizeEstimate int64
}

// FetchMessages lists up to maxResults messages of a folder and hydrates each
// into its shaped form. maxResults is clamped to [1, 100].
func (m *MailboxService) FetchMessages(
	ctx context.Context,
	folder string,
	maxResults int64,
	pageToken string,
	search string,
) (*MessagePage, error) {
	fc, ok := KnownFolder(folder)
	if !ok {
		return nil, errutil.BadRequestError(fmt.Errorf("%w: %s", ErrUnknownFolder, folder))
	}

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxMaxResults {
		maxResults = MaxMaxResults
	}

	call := m.svc.Users.Messages.List("me").MaxResults(maxResults).Context(ctx)
	if fc.LabelID != "" {
		call = call.LabelIds(fc.LabelID)
	}

	q := fc.Query
	if search != "" {
		if q != "" {
			q = fmt.Sprintf("%s %s", q, search)
		} else {
			q = search
		}
	}
	if q != "" {
		call = call.Q(q)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	listRes, err := call.Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	messages := make([]*entity.Message, 0, len(listRes.Messages))
	for _, ref := range listRes.Messages {
		full, err := m.svc.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, mapGoogleError(err)
		}
		messages = append(messages, shapeMessage(full))
	}

	return &MessagePage{
		Messages:           messages,
		NextPageToken:      listRes.NextPageToken,
		ResultSizeEstimate: listRes.ResultSizeEstimate,
	}, nil
}

// BatchModify applies label changes to a set of messages in one call.
func (m *MailboxService) BatchModify(ctx context.Context, ids, addLabels, removeLabels []string) error {
	req := &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		AddLabelIds:    addLabels,
		RemoveLabelIds: removeLabels,
	}
	if err := m.svc.Users.Messages.BatchModify("me", req).Context(ctx).Do(); err != nil {
		return mapGoogleError(err)
	}
	return nil
}

// Send submits a raw RFC 2822 message from the impersonated mailbox and
// returns the Gmail message id.
func (m *MailboxService) Send(ctx context.Context, raw []byte) (string, error) {
	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}
	sent, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", mapGoogleError(err)
	}
	return sent.Id, nil
}

// Attachment downloads and decodes one attachment body.
func (m *MailboxService) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	body, err := m.svc.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}
	if body == nil || body.Data == "" {
		return nil, errutil.NotFoundError(errors.New("attachment has no data"))
	}

	data, err := decodeBase64URL(body.Data)
	if err != nil {
		return nil, errutil.InternalServerError(fmt.Errorf("decode attachment: %w", err))
	}
	return data, nil
}

// FolderStats counts messages per analytics folder within a date window.
// The before: operator is exclusive, so the end date is pushed out a day to
// keep the window inclusive.
func (m *MailboxService) FolderStats(ctx context.Context, startDate, endDate string) ([]*entity.FolderStat, error) {
	var after, before string
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, errutil.BadRequestError(fmt.Errorf("invalid start date: %s", startDate))
		}
		after = t.Format(gmailQueryLayout)
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, errutil.BadRequestError(fmt.Errorf("invalid end date: %s", endDate))
		}
		before = t.AddDate(0, 0, 1).Format(gmailQueryLayout)
	}

	stats := make([]*entity.FolderStat, 0, len(analyticsFolders))
	for _, folder := range analyticsFolders {
		fc := FolderConfigs[folder]

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("in:%s", strings.ToLower(fc.LabelID)))
		if after != "" {
			sb.WriteString(fmt.Sprintf(" after:%s", after))
		}
		if before != "" {
			sb.WriteString(fmt.Sprintf(" before:%s", before))
		}

		count, err := m.CountMessages(ctx, sb.String())
		if err != nil {
			return nil, err
		}

		name := folder
		if alias, ok := analyticsFolderAlias[folder]; ok {
			name = alias
		}
		stats = append(stats, &entity.FolderStat{
			Folder: name,
			Count:  count,
		})
	}

	return stats, nil
}

// CountMessages pages through a message list query counting ids, up to the
// page cap.
func (m *MailboxService) CountMessages(ctx context.Context, query string) (int64, error) {
	var (
		count     int64
		pageToken string
	)

	for page := 0; page < maxCountPages; page++ {
		call := m.svc.Users.Messages.List("me").Q(query).MaxResults(500).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return 0, mapGoogleError(err)
		}

		count += int64(len(res.Messages))

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	return count, nil
}

// shapeMessage flattens the Gmail payload tree into the dashboard view:
// common headers, attachment references, and the first html and plain bodies.
func shapeMessage(msg *gmail.Message) *entity.Message {
	out := &entity.Message{
		ID:          msg.Id,
		Snippet:     msg.Snippet,
		LabelIds:    msg.LabelIds,
		Attachments: []*entity.AttachmentRef{},
	}

	for _, id := range msg.LabelIds {
		if id == "STARRED" {
			out.IsStarred = true
			break
		}
	}

	if msg.Payload == nil {
		return out
	}

	headers := make(map[string]string, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		headers[strings.ToLower(h.Name)] = h.Value
	}
	out.Subject = headers["subject"]
	if out.Subject == "" {
		out.Subject = "(No subject)"
	}
	out.From = headers["from"]
	out.To = headers["to"]
	out.Cc = headers["cc"]
	out.Date = headers["date"]

	walkParts(msg.Payload, out)
	out.HasAttachments = len(out.Attachments) > 0

	return out
}

func walkParts(part *gmail.MessagePart, out *entity.Message) {
	if part == nil {
		return
	}

	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out.Attachments = append(out.Attachments, &entity.AttachmentRef{
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
			AttachmentID: part.Body.AttachmentId,
			MessageID:    out.ID,
		})
	} else if part.Body != nil && part.Body.Data != "" {
		if data, err := decodeBase64URL(part.Body.Data); err == nil {
			switch part.MimeType {
			case "text/html":
				if out.BodyHtml == "" {
					out.BodyHtml = string(data)
				}
			case "text/plain":
				if out.BodyPlain == "" {
					out.BodyPlain = string(data)
				}
			}
		}
	}

	for _, child := range part.Parts {
		walkParts(child, out)
	}
}

// decodeBase64URL decodes Gmail body data, which is base64url with or without
// padding depending on the producing client.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// mapGoogleError preserves the upstream status code so a Gmail 403 or 404
// surfaces as such instead of a generic 500.
func mapGoogleError(err error) error {
	gerr := new(googleapi.Error)
	if errors.As(err, &gerr) {
		return errutil.UpstreamError(gerr.Code, fmt.Errorf("gmail API error: %s", gerr.Message))
	}
	return errutil.InternalServerError(err)
}
