// Package common provides shared helpers for MCP tool handlers, including
// account resolution from request arguments and instrumentation wrappers
// that record metrics and audit logs around tool invocations.
package common
