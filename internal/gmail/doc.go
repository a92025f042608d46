// Package gmail wraps the Gmail API for mailsense.
//
// It provides a Client over the Gmail Users service with a TTL-bounded
// message cache and retry on transient API errors, a pure query builder
// that compiles structured search filters to Gmail query strings, and a
// mapper that flattens the nested MIME part tree of a Gmail message into
// the flat Email record used by the MCP tools.
package gmail
