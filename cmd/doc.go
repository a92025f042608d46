// Package cmd implements the command-line interface for mailsense.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide inbox and analysis tools for AI assistants
//   - auth: Authorize a Google account and store its OAuth token
//   - setup: Print setup instructions and verify the local configuration
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
