package email_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/inletlabs/mailsense/internal/analyzer"
	"github.com/inletlabs/mailsense/internal/gmail"
	"github.com/inletlabs/mailsense/internal/server"
	"github.com/inletlabs/mailsense/internal/tools/batch"
	"github.com/inletlabs/mailsense/internal/tools/common"
)

const (
	// defaultSearchResults is the result count when maxResults is omitted.
	defaultSearchResults = 20

	// maxAnalysisConcurrency bounds LLM calls when includeAnalysis is set.
	maxAnalysisConcurrency = 5
)

// searchAnalysis is the optional per-result analysis attachment.
type searchAnalysis struct {
	Category   string  `json:"category"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// searchResultEmail is one email in the search response. The full body is
// omitted; email_get returns it.
type searchResultEmail struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"threadId"`
	Subject        string          `json:"subject"`
	From           string          `json:"from"`
	Date           time.Time       `json:"date"`
	Snippet        string          `json:"snippet,omitempty"`
	Labels         []string        `json:"labels,omitempty"`
	IsRead         bool            `json:"isRead"`
	IsStarred      bool            `json:"isStarred"`
	HasAttachments bool            `json:"hasAttachments"`
	Analysis       *searchAnalysis `json:"analysis,omitempty"`
}

type searchResponse struct {
	Query  string              `json:"query"`
	Total  int                 `json:"total"`
	Emails []searchResultEmail `json:"emails"`
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	filters, err := parseSearchFilters(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := filters.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	maxResults := resolveMaxResults(args, sc.Config().MaxResults)

	includeAnalysis := false
	if b, ok := args["includeAnalysis"].(bool); ok {
		includeAnalysis = b
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	query := filters.BuildQuery()
	emails, err := client.SearchEmails(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	response := searchResponse{
		Query:  query,
		Total:  len(emails),
		Emails: make([]searchResultEmail, len(emails)),
	}
	for i, email := range emails {
		response.Emails[i] = searchResultEmail{
			ID:             email.ID,
			ThreadID:       email.ThreadID,
			Subject:        email.Subject,
			From:           email.From,
			Date:           email.Date,
			Snippet:        email.Snippet,
			Labels:         email.Labels,
			IsRead:         email.IsRead,
			IsStarred:      email.IsStarred,
			HasAttachments: email.HasAttachments,
		}
	}

	if includeAnalysis && len(emails) > 0 {
		attachAnalysis(ctx, sc, emails, response.Emails)
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format search results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// attachAnalysis analyzes search results with bounded concurrency and fills
// the analysis field of each result. A failed analysis leaves the field
// empty rather than failing the search.
func attachAnalysis(ctx context.Context, sc *server.ServerContext, emails []*gmail.Email, results []searchResultEmail) {
	a := sc.Analyzer()
	types := []analyzer.AnalysisType{analyzer.TypeCategory, analyzer.TypePriority}

	start := time.Now()
	tokens := make([]int64, len(emails))

	g := new(errgroup.Group)
	g.SetLimit(maxAnalysisConcurrency)
	for i, email := range emails {
		g.Go(func() error {
			analysis, err := a.Analyze(ctx, email, types)
			if err != nil {
				return nil
			}
			tokens[i] = analysis.TokensUsed
			results[i].Analysis = &searchAnalysis{
				Category:   analysis.Category,
				Priority:   analysis.Priority,
				Confidence: analysis.Confidence,
			}
			return nil
		})
	}
	_ = g.Wait()

	var totalTokens int64
	for _, t := range tokens {
		totalTokens += t
	}
	recordAnalysisMetrics(ctx, sc, a.Model(), types, nil, time.Since(start), totalTokens)
}

// resolveMaxResults picks the search page size. An explicit maxResults
// argument wins, then the configured default, then the built-in default.
func resolveMaxResults(args map[string]interface{}, configured int) int64 {
	if f, ok := args["maxResults"].(float64); ok {
		return int64(f)
	}
	if configured > 0 {
		return int64(configured)
	}
	return defaultSearchResults
}

// parseSearchFilters maps the email_search arguments to structured filters.
func parseSearchFilters(args map[string]interface{}) (*gmail.SearchFilters, error) {
	filters := &gmail.SearchFilters{}

	if v, ok := args["query"].(string); ok {
		filters.Query = v
	}
	if v, ok := args["sender"].(string); ok {
		filters.Sender = v
	}
	if v, ok := args["recipient"].(string); ok {
		filters.Recipient = v
	}
	if v, ok := args["subjectContains"].(string); ok {
		filters.SubjectContains = v
	}
	if v, ok := args["dateFrom"].(string); ok {
		filters.DateFrom = v
	}
	if v, ok := args["dateTo"].(string); ok {
		filters.DateTo = v
	}
	if v, ok := args["hasAttachment"].(bool); ok {
		filters.HasAttachment = &v
	}
	if v, ok := args["isUnread"].(bool); ok {
		filters.IsUnread = &v
	}
	if raw, ok := args["labels"]; ok && raw != nil {
		labels, err := batch.ParseStringOrArray(raw, "labels")
		if err != nil {
			return nil, err
		}
		filters.Labels = labels
	}

	return filters, nil
}
