// Package instrumentation provides OpenTelemetry metrics, tracing, and audit
// logging for the mailsense MCP server.
//
// The Provider wires up meter and tracer providers from environment-driven
// configuration (Prometheus, OTLP, or stdout exporters), the Metrics type
// records tool, Gmail API, and analysis metrics, and the AuditLogger emits a
// structured audit trail of tool invocations.
package instrumentation
