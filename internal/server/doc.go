// Package server provides the MCP server context, health checks, and the
// HTTP transport for the mailsense application.
//
// # Key Components
//
// ServerContext manages Gmail clients and the email analyzer with lazy
// initialization and caching. It supports multiple accounts, each backed by
// its own token file on disk.
//
// HTTPServer wraps an MCP server with the streamable HTTP transport and
// exposes health check endpoints alongside the MCP endpoint.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated from
// the main application traffic.
package server
