package email_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inletlabs/mailsense/internal/server"
	"github.com/inletlabs/mailsense/internal/tools/batch"
	"github.com/inletlabs/mailsense/internal/tools/common"
)

// validateActionArgs checks the action name and its label requirements.
func validateActionArgs(action string, labelIDs []string) error {
	switch action {
	case "read", "unread", "archive", "delete", "star", "unstar":
		return nil
	case "label", "unlabel":
		if len(labelIDs) == 0 {
			return fmt.Errorf("labelIds is required for the %s action", action)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q, must be one of: read, unread, archive, delete, star, unstar, label, unlabel", action)
	}
}

func handleEmailAction(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	emailIDs, err := batch.ParseStringOrArray(args["emailIds"], "emailIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action, ok := args["action"].(string)
	if !ok || action == "" {
		return mcp.NewToolResultError("action is required"), nil
	}

	var labelIDs []string
	if raw, ok := args["labelIds"]; ok && raw != nil {
		labelIDs, err = batch.ParseStringOrArray(raw, "labelIds")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if err := validateActionArgs(action, labelIDs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.ProcessBatch(emailIDs, func(id string) (string, error) {
		switch action {
		case "read":
			return "Email marked as read", client.MarkRead(ctx, id)
		case "unread":
			return "Email marked as unread", client.MarkUnread(ctx, id)
		case "archive":
			return "Email archived", client.Archive(ctx, id)
		case "delete":
			return "Email moved to trash", client.Trash(ctx, id)
		case "star":
			return "Email starred", client.Star(ctx, id)
		case "unstar":
			return "Email unstarred", client.Unstar(ctx, id)
		case "label":
			return "Labels added", client.ModifyEmail(ctx, id, labelIDs, nil)
		case "unlabel":
			return "Labels removed", client.ModifyEmail(ctx, id, nil, labelIDs)
		default:
			return "", fmt.Errorf("unknown action %q", action)
		}
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
