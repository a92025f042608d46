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
	"github.com/inletlabs/mailsense/internal/instrumentation"
	"github.com/inletlabs/mailsense/internal/server"
	"github.com/inletlabs/mailsense/internal/tools/batch"
	"github.com/inletlabs/mailsense/internal/tools/common"
)

const (
	// maxClassifyEmails caps how many emails one classify call may process.
	maxClassifyEmails = 50

	// defaultBatchSize is the classify concurrency when none is given.
	defaultBatchSize = 10

	// maxBatchSize caps the classify concurrency.
	maxBatchSize = 20
)

// analyzeResponse is the email_analyze result payload. The embedded
// Analysis contributes emailId, the per-type fields, confidence and
// analyzedAt.
type analyzeResponse struct {
	Subject string `json:"subject"`
	*analyzer.Analysis
}

func handleAnalyzeEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	var types []analyzer.AnalysisType
	if rawTypes, ok := args["analysisTypes"]; ok && rawTypes != nil {
		names, err := batch.ParseStringOrArray(rawTypes, "analysisTypes")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		types, err = analyzer.ParseTypes(names)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		types = analyzer.AllTypes()
	}

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	email, err := client.GetEmail(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch email %s: %v", emailID, err)), nil
	}

	a := sc.Analyzer()
	start := time.Now()
	analysis, err := a.Analyze(ctx, email, types)
	var tokens int64
	if analysis != nil {
		tokens = analysis.TokensUsed
	}
	recordAnalysisMetrics(ctx, sc, a.Model(), types, err, time.Since(start), tokens)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze email %s: %v", emailID, err)), nil
	}

	response := analyzeResponse{
		Subject:  email.Subject,
		Analysis: analysis,
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format analysis: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// classificationResult is the per-email payload embedded in the batch
// result of email_classify.
type classificationResult struct {
	Sentiment  string  `json:"sentiment,omitempty"`
	Priority   string  `json:"priority,omitempty"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence"`
}

func handleClassifyEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	emailIDs, err := batch.ParseStringOrArray(args["emailIds"], "emailIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(emailIDs) > maxClassifyEmails {
		return mcp.NewToolResultError(fmt.Sprintf("too many emails: %d, maximum is %d per call", len(emailIDs), maxClassifyEmails)), nil
	}

	classificationType, err := parseClassificationType(args["classificationType"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	batchSize := clampBatchSize(args["batchSize"])

	client, errResult := gmailClientOrError(sc, account)
	if errResult != nil {
		return errResult, nil
	}

	// Fetch email details in parallel. Per-email fetch failures are kept
	// as errored results instead of aborting the batch.
	emails := make([]*gmail.Email, len(emailIDs))
	fetchErrs := make([]error, len(emailIDs))

	g := new(errgroup.Group)
	g.SetLimit(batchSize)
	for i, id := range emailIDs {
		g.Go(func() error {
			emails[i], fetchErrs[i] = client.GetEmail(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	fetched := make([]*gmail.Email, 0, len(emails))
	for _, email := range emails {
		if email != nil {
			fetched = append(fetched, email)
		}
	}

	start := time.Now()
	batchResults := sc.Analyzer().AnalyzeBatch(ctx, fetched, classificationType, batchSize)
	analysisByID := make(map[string]analyzer.BatchResult, len(batchResults))
	for _, br := range batchResults {
		analysisByID[br.EmailID] = br
	}

	var batchErr error
	var totalTokens int64
	results := make([]batch.Result, 0, len(emailIDs))
	for i, id := range emailIDs {
		if fetchErrs[i] != nil {
			results = append(results, batch.NewErrorResult(id, fetchErrs[i]))
			continue
		}

		br := analysisByID[id]
		if br.Err != nil {
			batchErr = br.Err
			results = append(results, batch.NewErrorResult(id, br.Err))
			continue
		}
		totalTokens += br.Analysis.TokensUsed

		payload := classificationResult{
			Sentiment:  br.Analysis.Sentiment,
			Priority:   br.Analysis.Priority,
			Category:   br.Analysis.Category,
			Confidence: br.Analysis.Confidence,
		}
		jsonBytes, _ := json.Marshal(payload)
		results = append(results, batch.NewSuccessResult(id, string(jsonBytes)))
	}

	recordAnalysisMetrics(ctx, sc, sc.Analyzer().Model(), []analyzer.AnalysisType{classificationType}, batchErr, time.Since(start), totalTokens)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// parseClassificationType validates the classificationType argument.
// Summary is not a classification; only the enum-valued types are allowed.
func parseClassificationType(raw interface{}) (analyzer.AnalysisType, error) {
	name, ok := raw.(string)
	if !ok || name == "" {
		return analyzer.TypeCategory, nil
	}

	switch analyzer.AnalysisType(name) {
	case analyzer.TypeCategory, analyzer.TypePriority, analyzer.TypeSentiment:
		return analyzer.AnalysisType(name), nil
	default:
		return "", fmt.Errorf("unknown classification type %q, must be one of: category, priority, sentiment", name)
	}
}

// clampBatchSize parses the batchSize argument and clamps it to [1, 20].
func clampBatchSize(raw interface{}) int {
	size := defaultBatchSize
	if f, ok := raw.(float64); ok {
		size = int(f)
	}
	if size < 1 {
		size = 1
	}
	if size > maxBatchSize {
		size = maxBatchSize
	}
	return size
}

// recordAnalysisMetrics records one analysis operation per requested type
// plus the reported token usage. Metrics may be nil when instrumentation
// is disabled.
func recordAnalysisMetrics(ctx context.Context, sc *server.ServerContext, model string, types []analyzer.AnalysisType, err error, duration time.Duration, tokens int64) {
	metrics := sc.Metrics()
	if metrics == nil {
		return
	}

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	for _, t := range types {
		metrics.RecordAnalysis(ctx, model, string(t), status, duration)
	}
	metrics.RecordAnalysisTokens(ctx, model, tokens)
}
