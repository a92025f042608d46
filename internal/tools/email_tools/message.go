package email_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inletlabs/mailsense/internal/gmail"
	"github.com/inletlabs/mailsense/internal/server"
	"github.com/inletlabs/mailsense/internal/tools/common"
)

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	email, err := client.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch email %s: %v", emailID, err)), nil
	}

	jsonBytes, err := json.MarshalIndent(email, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format email: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

type threadResponse struct {
	ThreadID string         `json:"threadId"`
	Count    int            `json:"count"`
	Emails   []*gmail.Email `json:"emails"`
}

func handleGetThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	emails, err := client.GetThread(ctx, threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch thread %s: %v", threadID, err)), nil
	}

	response := threadResponse{
		ThreadID: threadID,
		Count:    len(emails),
		Emails:   emails,
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format thread: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleUnreadCount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	count, err := client.UnreadCount(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to count unread emails: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`{"account": %q, "unreadCount": %d}`, account, count)), nil
}
