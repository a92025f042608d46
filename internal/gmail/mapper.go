package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailFromMessage flattens a Gmail API message into an Email record.
//
// The Gmail API returns a nested MIME part tree; this walks it once for
// text bodies and once for attachments, decodes base64url payloads, and
// derives the read/starred/important flags from the label ids.
func EmailFromMessage(msg *gmail.Message) (*Email, error) {
	email := &Email{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		Labels:       msg.LabelIds,
		SizeEstimate: msg.SizeEstimate,
		HistoryID:    msg.HistoryId,
	}

	headers := headerMap(msg.Payload)
	email.Subject = headers["subject"]
	email.From = headers["from"]
	email.To = parseAddressList(headers["to"])
	email.Cc = parseAddressList(headers["cc"])
	email.Bcc = parseAddressList(headers["bcc"])
	email.Date = parseDate(headers["date"], msg.InternalDate)

	email.Body = extractBody(msg.Payload)
	email.Attachments = extractAttachments(msg.Payload)
	email.HasAttachments = len(email.Attachments) > 0

	email.IsRead = !email.HasLabel(labelUnread)
	email.IsStarred = email.HasLabel(labelStarred)
	email.IsImportant = email.HasLabel(labelImportant)

	if err := email.Validate(); err != nil {
		return nil, err
	}

	return email, nil
}

// headerMap builds a lowercase-keyed map of the payload headers.
// Gmail header names vary in casing between senders.
func headerMap(payload *gmail.MessagePart) map[string]string {
	headers := make(map[string]string)
	if payload == nil {
		return headers
	}
	for _, h := range payload.Headers {
		key := strings.ToLower(h.Name)
		if _, ok := headers[key]; !ok {
			headers[key] = h.Value
		}
	}
	return headers
}

// parseAddressList splits a recipient header into individual addresses.
// It prefers RFC 5322 parsing and falls back to a raw comma split for the
// malformed headers real mailboxes contain.
func parseAddressList(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	if addrs, err := mail.ParseAddressList(header); err == nil {
		result := make([]string, 0, len(addrs))
		for _, a := range addrs {
			result = append(result, a.Address)
		}
		return result
	}

	var result []string
	for _, part := range strings.Split(header, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDate parses the RFC 2822 Date header, falling back to the message's
// internal date (milliseconds since epoch) when the header is missing or
// unparseable.
func parseDate(header string, internalDate int64) time.Time {
	if header != "" {
		if t, err := mail.ParseDate(header); err == nil {
			return t.UTC()
		}
	}
	if internalDate > 0 {
		return time.UnixMilli(internalDate).UTC()
	}
	return time.Time{}
}

// extractBody walks the part tree collecting decoded text/plain and
// text/html leaf parts, joined with newlines. Parts carrying a filename are
// attachments, not body content, even when their MIME type is text.
func extractBody(payload *gmail.MessagePart) string {
	var parts []string

	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Filename != "" {
			return
		}
		if part.MimeType != "text/plain" && part.MimeType != "text/html" {
			return
		}
		if part.Body == nil || part.Body.Data == "" {
			return
		}
		if decoded, ok := decodeBody(part.Body.Data); ok {
			parts = append(parts, decoded)
		}
	})

	return strings.Join(parts, "\n")
}

// extractAttachments walks the part tree collecting parts that carry both a
// filename and an attachment id.
func extractAttachments(payload *gmail.MessagePart) []Attachment {
	var attachments []Attachment

	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			return
		}
		attachments = append(attachments, Attachment{
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
			AttachmentID: part.Body.AttachmentId,
		})
	})

	return attachments
}

// decodeBody decodes base64url-encoded part data (Gmail uses RFC 4648
// base64url), falling back to standard base64.
func decodeBody(data string) (string, bool) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", false
		}
	}
	return string(decoded), true
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
