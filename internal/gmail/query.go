package gmail

import (
	"fmt"
	"strings"
	"time"
)

// gmailDateFormat is the date layout Gmail search operators expect.
const gmailDateFormat = "2006/01/02"

// SearchFilters holds the structured search parameters of the email_search
// tool. BuildQuery compiles them to a Gmail query string.
type SearchFilters struct {
	// Query is a free-form Gmail query appended verbatim.
	Query string

	Sender          string
	Recipient       string
	SubjectContains string

	// DateFrom and DateTo are inclusive bounds in YYYY/MM/DD format.
	DateFrom string
	DateTo   string

	// HasAttachment and IsUnread are tri-state: nil means "don't care".
	HasAttachment *bool
	IsUnread      *bool

	Labels []string

	// IncludeSpamTrash includes spam and trash in results. Gmail excludes
	// them by default for list calls with a query, so the builder adds
	// explicit exclusions unless this is set.
	IncludeSpamTrash bool
}

// Validate checks date formats and rejects inverted ranges.
func (f *SearchFilters) Validate() error {
	var from, to time.Time
	var err error

	if f.DateFrom != "" {
		from, err = time.Parse(gmailDateFormat, f.DateFrom)
		if err != nil {
			return fmt.Errorf("invalid dateFrom %q, expected YYYY/MM/DD", f.DateFrom)
		}
	}
	if f.DateTo != "" {
		to, err = time.Parse(gmailDateFormat, f.DateTo)
		if err != nil {
			return fmt.Errorf("invalid dateTo %q, expected YYYY/MM/DD", f.DateTo)
		}
	}
	if f.DateFrom != "" && f.DateTo != "" && to.Before(from) {
		return fmt.Errorf("dateTo %s is before dateFrom %s", f.DateTo, f.DateFrom)
	}

	return nil
}

// BuildQuery compiles the filters to a Gmail search string. The function is
// pure and deterministic: the same filters always produce the same query,
// with terms in a fixed order joined by single spaces.
func (f *SearchFilters) BuildQuery() string {
	var terms []string

	if q := strings.TrimSpace(f.Query); q != "" {
		terms = append(terms, q)
	}
	if f.Sender != "" {
		terms = append(terms, "from:"+f.Sender)
	}
	if f.Recipient != "" {
		terms = append(terms, "to:"+f.Recipient)
	}
	if f.SubjectContains != "" {
		terms = append(terms, "subject:"+quoteIfSpaced(f.SubjectContains))
	}
	if f.DateFrom != "" {
		terms = append(terms, "after:"+f.DateFrom)
	}
	if f.DateTo != "" {
		terms = append(terms, "before:"+f.DateTo)
	}
	if f.HasAttachment != nil {
		if *f.HasAttachment {
			terms = append(terms, "has:attachment")
		} else {
			terms = append(terms, "-has:attachment")
		}
	}
	if f.IsUnread != nil {
		if *f.IsUnread {
			terms = append(terms, "is:unread")
		} else {
			terms = append(terms, "is:read")
		}
	}
	for _, label := range f.Labels {
		if label != "" {
			terms = append(terms, "label:"+label)
		}
	}
	if !f.IncludeSpamTrash {
		terms = append(terms, "-in:spam", "-in:trash")
	}

	return strings.Join(terms, " ")
}

// quoteIfSpaced wraps multi-word values in parentheses so Gmail treats them
// as a single subject term.
func quoteIfSpaced(s string) string {
	if strings.ContainsAny(s, " \t") {
		return "(" + s + ")"
	}
	return s
}
