package email_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/inletlabs/mailsense/internal/gmail"
	"github.com/inletlabs/mailsense/internal/google"
	"github.com/inletlabs/mailsense/internal/instrumentation"
	"github.com/inletlabs/mailsense/internal/server"
	"github.com/inletlabs/mailsense/internal/tools/common"
)

// gmailClientOrError returns the Gmail client for the given account, or a
// tool error result describing how to authorize when no client is available.
func gmailClientOrError(sc *server.ServerContext, account string) (*gmail.Client, *mcp.CallToolResult) {
	client := sc.GmailClientForAccount(account)
	if client != nil {
		return client, nil
	}

	if !gmail.HasTokenForAccount(account) {
		instructions := fmt.Sprintf(`Google OAuth token not found for account "%s". To authorize access:

1. Run the following command in a terminal:
   mailsense auth --account %s

2. Visit the printed URL in your browser and sign in with your Google account
3. Grant read and modify access to Gmail
4. Copy the authorization code and paste it back into the terminal

Note: You only need to authorize once. The token is refreshed automatically.`, account, account)

		if authURL, err := google.GetAuthURLForAccount(account); err == nil {
			instructions += "\n\nAuthorization URL:\n   " + authURL
		}
		return nil, mcp.NewToolResultError(instructions)
	}

	return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client for account %s; check the server logs for details", account))
}

// RegisterEmailTools registers all email tools with the MCP server.
// Write operations (email_action, email_create_label) are only registered
// when readOnly is false.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Analyze tool
	analyzeTool := mcp.NewTool("email_analyze",
		mcp.WithDescription("Analyze a single email with an LLM. Returns sentiment, priority, category and summary with a confidence score."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to analyze"),
		),
		mcp.WithString("analysisTypes",
			mcp.Description("Analysis type (string) or array of types to run: sentiment, priority, category, summary. Defaults to all."),
		),
	)

	s.AddTool(analyzeTool, common.InstrumentedToolHandlerWithService(
		"email_analyze", instrumentation.ServiceAnalyzer, instrumentation.OperationAnalyze, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAnalyzeEmail(ctx, request, sc)
		}))

	// Classify tool
	classifyTool := mcp.NewTool("email_classify",
		mcp.WithDescription("Classify multiple emails by category, priority or sentiment. Processes emails in batches and reports per-email results; a failed email does not abort the rest."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailIds",
			mcp.Required(),
			mcp.Description("Email ID (string) or array of email IDs to classify (max 50)"),
		),
		mcp.WithString("classificationType",
			mcp.Description("What to classify by: category, priority or sentiment (default: category)"),
		),
		mcp.WithNumber("batchSize",
			mcp.Description("How many emails to analyze concurrently, 1-20 (default: 10)"),
		),
	)

	s.AddTool(classifyTool, common.InstrumentedToolHandlerWithService(
		"email_classify", instrumentation.ServiceAnalyzer, instrumentation.OperationAnalyze, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassifyEmails(ctx, request, sc)
		}))

	// Search tool
	searchTool := mcp.NewTool("email_search",
		mcp.WithDescription("Search emails with structured filters. Filters are compiled to a Gmail query; a free-form query can be combined with the structured filters."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Description("Free-form Gmail search query (e.g. 'in:inbox', 'invoice')"),
		),
		mcp.WithString("sender",
			mcp.Description("Filter by sender email address"),
		),
		mcp.WithString("recipient",
			mcp.Description("Filter by recipient email address"),
		),
		mcp.WithString("subjectContains",
			mcp.Description("Filter by text contained in the subject"),
		),
		mcp.WithString("dateFrom",
			mcp.Description("Only emails on or after this date (YYYY/MM/DD)"),
		),
		mcp.WithString("dateTo",
			mcp.Description("Only emails before this date (YYYY/MM/DD)"),
		),
		mcp.WithBoolean("hasAttachment",
			mcp.Description("Filter by attachment presence"),
		),
		mcp.WithBoolean("isUnread",
			mcp.Description("Filter by read state"),
		),
		mcp.WithString("labels",
			mcp.Description("Label name (string) or array of label names the emails must carry"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return, 1-100 (default: 20)"),
		),
		mcp.WithBoolean("includeAnalysis",
			mcp.Description("Attach category, priority and confidence to each result (slower, uses the LLM)"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService(
		"email_search", instrumentation.ServiceGmail, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Get email tool
	getEmailTool := mcp.NewTool("email_get",
		mcp.WithDescription("Fetch a single email by ID, including the flattened plain-text body"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to fetch"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandlerWithService(
		"email_get", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	// Thread tool
	threadTool := mcp.NewTool("email_thread",
		mcp.WithDescription("Fetch all messages of a thread, oldest first"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to fetch"),
		),
	)

	s.AddTool(threadTool, common.InstrumentedToolHandlerWithService(
		"email_thread", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThread(ctx, request, sc)
		}))

	// Labels tool
	labelsTool := mcp.NewTool("email_labels",
		mcp.WithDescription("List all labels of the mailbox"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(labelsTool, common.InstrumentedToolHandlerWithService(
		"email_labels", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	// Unread count tool
	unreadCountTool := mcp.NewTool("email_unread_count",
		mcp.WithDescription("Return Gmail's estimate of the number of unread messages"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(unreadCountTool, common.InstrumentedToolHandlerWithService(
		"email_unread_count", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUnreadCount(ctx, request, sc)
		}))

	// Write operations below. Only registered when the server runs with --yolo.
	if readOnly {
		return nil
	}

	// Action tool
	actionTool := mcp.NewTool("email_action",
		mcp.WithDescription("Perform an action on one or more emails: read, unread, archive, delete, star, unstar, label, unlabel. Delete moves emails to the trash."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailIds",
			mcp.Required(),
			mcp.Description("Email ID (string) or array of email IDs to act on"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action to perform: read, unread, archive, delete, star, unstar, label, unlabel"),
		),
		mcp.WithString("labelIds",
			mcp.Description("Label ID (string) or array of label IDs. Required for the label and unlabel actions."),
		),
	)

	s.AddTool(actionTool, common.InstrumentedToolHandlerWithService(
		"email_action", instrumentation.ServiceGmail, instrumentation.OperationModify, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEmailAction(ctx, request, sc)
		}))

	// Create label tool
	createLabelTool := mcp.NewTool("email_create_label",
		mcp.WithDescription("Create a new user label in the mailbox"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the label to create"),
		),
	)

	s.AddTool(createLabelTool, common.InstrumentedToolHandlerWithService(
		"email_create_label", instrumentation.ServiceGmail, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	return nil
}
