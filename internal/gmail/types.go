package gmail

import (
	"fmt"
	"time"
)

// Well-known Gmail system label ids.
const (
	labelUnread    = "UNREAD"
	labelStarred   = "STARRED"
	labelImportant = "IMPORTANT"
	labelInbox     = "INBOX"
)

// Attachment describes a single attachment of an email.
type Attachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachmentId"`
}

// Email is the flat representation of a Gmail message used throughout
// mailsense. It is produced by EmailFromMessage from the nested MIME
// structure the Gmail API returns.
type Email struct {
	ID             string       `json:"id"`
	ThreadID       string       `json:"threadId"`
	Subject        string       `json:"subject"`
	From           string       `json:"from"`
	To             []string     `json:"to,omitempty"`
	Cc             []string     `json:"cc,omitempty"`
	Bcc            []string     `json:"bcc,omitempty"`
	Date           time.Time    `json:"date"`
	Snippet        string       `json:"snippet,omitempty"`
	Body           string       `json:"body,omitempty"`
	Labels         []string     `json:"labels,omitempty"`
	IsRead         bool         `json:"isRead"`
	IsStarred      bool         `json:"isStarred"`
	IsImportant    bool         `json:"isImportant"`
	HasAttachments bool         `json:"hasAttachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	SizeEstimate   int64        `json:"sizeEstimate,omitempty"`
	HistoryID      uint64       `json:"historyId,omitempty"`
}

// Validate checks that the email carries the minimum fields every Gmail
// message has. A message without an id or sender indicates a mapping bug.
func (e *Email) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("email has no id")
	}
	if e.From == "" {
		return fmt.Errorf("email %s has no sender", e.ID)
	}
	return nil
}

// HasLabel reports whether the email carries the given label id.
func (e *Email) HasLabel(labelID string) bool {
	for _, l := range e.Labels {
		if l == labelID {
			return true
		}
	}
	return false
}

// Label is a Gmail label.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
