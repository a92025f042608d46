// Package email_tools implements the MCP tools for inbox access and
// LLM-backed email analysis.
//
// Read tools (always registered):
//   - email_analyze: analyze a single email (sentiment, priority, category, summary)
//   - email_classify: classify multiple emails in bounded-concurrency batches
//   - email_search: structured search over the mailbox, optionally with analysis
//   - email_get: fetch a single email with full body
//   - email_thread: fetch all messages of a thread
//   - email_labels: list mailbox labels
//   - email_unread_count: unread message estimate
//
// Write tools (require the server to run with --yolo):
//   - email_action: read/unread/archive/delete/star/unstar/label/unlabel
//   - email_create_label: create a user label
//
// Every tool accepts an optional "account" argument so multiple Google
// accounts can be used side by side; it defaults to "default".
package email_tools
