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

type labelsResponse struct {
	Total  int           `json:"total"`
	Labels []gmail.Label `json:"labels"`
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	response := labelsResponse{
		Total:  len(labels),
		Labels: labels,
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format labels: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.CreateLabel(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label %q: %v", name, err)), nil
	}

	jsonBytes, err := json.MarshalIndent(label, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format label: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
