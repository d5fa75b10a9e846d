package config

const (
	PathHealthCheck       = "/"
	PathLogin             = "/login"
	PathEmails            = "/emails"
	PathMailboxOverview   = "/mailbox/{mailbox}/overview"
	PathMailboxMessages   = "/mailbox/{mailbox}/messages"
	PathMailboxBulkModify = "/mailbox/{mailbox}/messages/bulk"
	PathMailboxSend       = "/mailbox/{mailbox}/send"
	PathMailboxAttachment = "/mailbox/{mailbox}/attachments/{messageId}/{attachmentId}"
	PathAnalytics         = "/analytics"
)

const (
	DefaultPort   = 5001
	LogLevelDebug = "DEBUG"
)
