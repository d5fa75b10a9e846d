package entity

// Message is the shaped view of a Gmail message returned to the dashboard.
type Message struct {
	ID             string           `json:"id"`
	Snippet        string           `json:"snippet"`
	Subject        string           `json:"subject"`
	From           string           `json:"from"`
	To             string           `json:"to"`
	Cc             string           `json:"cc"`
	Date           string           `json:"date"`
	LabelIds       []string         `json:"labelIds"`
	Attachments    []*AttachmentRef `json:"attachments"`
	HasAttachments bool             `json:"hasAttachments"`
	BodyHtml       string           `json:"bodyHtml"`
	BodyPlain      string           `json:"bodyPlain"`
	IsStarred      bool             `json:"isStarred"`
}

// AttachmentRef identifies one downloadable attachment of a message.
type AttachmentRef struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachmentId"`
	MessageID    string `json:"messageId"`
}

// MailboxLabel is the label metadata shown on the mailbox overview.
type MailboxLabel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	MessagesTotal *int64 `json:"messagesTotal"`
}
