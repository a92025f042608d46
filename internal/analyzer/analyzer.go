package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/inletlabs/mailsense/internal/gmail"
	"github.com/inletlabs/mailsense/internal/logging"
)

const (
	// DefaultMaxBodyChars bounds how much body text is sent to the model.
	DefaultMaxBodyChars = 4000

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// maxBatchConcurrency caps parallel model calls regardless of batch size.
	maxBatchConcurrency = 20
)

// modelResult is the structured output schema the model fills in.
// Field descriptions guide the model; the schema enforces the shape.
type modelResult struct {
	Sentiment      string   `json:"sentiment" jsonschema:"enum=positive,enum=negative,enum=neutral" jsonschema_description:"Overall emotional tone of the email"`
	Priority       string   `json:"priority" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"How urgently the email needs attention"`
	Category       string   `json:"category" jsonschema_description:"Short category label such as work, personal, promotional, transactional, or newsletter"`
	Confidence     float64  `json:"confidence" jsonschema_description:"Confidence in this analysis from 0.0 to 1.0"`
	Summary        string   `json:"summary" jsonschema_description:"One to two sentence summary of the email"`
	Keywords       []string `json:"keywords" jsonschema_description:"Up to five keywords capturing the email's topics"`
	ActionRequired bool     `json:"action_required" jsonschema_description:"Whether the recipient needs to act on this email"`
}

// generateSchema reflects a Go type into a JSON schema suitable for
// structured output. Structured output requires no additional properties
// and inlined definitions.
func generateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var modelResultSchema = generateSchema[modelResult]()

// Config holds analyzer settings.
type Config struct {
	// APIKey authenticates with the OpenAI API. Empty falls back to the
	// SDK's OPENAI_API_KEY environment lookup.
	APIKey string

	// Model is the chat model name.
	Model string

	// MaxBodyChars truncates email bodies before they are sent to the model.
	MaxBodyChars int

	// ConfidenceThreshold marks results below it as low-confidence in logs.
	ConfidenceThreshold float64
}

// Analyzer analyzes emails with an LLM.
type Analyzer struct {
	client              *openai.Client
	model               string
	maxBodyChars        int
	confidenceThreshold float64
	logger              *slog.Logger
}

// New creates an Analyzer from the given configuration.
func New(cfg Config) *Analyzer {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxBodyChars <= 0 {
		cfg.MaxBodyChars = DefaultMaxBodyChars
	}

	return &Analyzer{
		client:              openai.NewClient(opts...),
		model:               cfg.Model,
		maxBodyChars:        cfg.MaxBodyChars,
		confidenceThreshold: cfg.ConfidenceThreshold,
		logger:              slog.Default(),
	}
}

// Model returns the configured chat model name.
func (a *Analyzer) Model() string {
	return a.model
}

// Analyze runs the requested analysis types on one email and returns a
// validated Analysis. Fields for types that were not requested are cleared.
func (a *Analyzer) Analyze(ctx context.Context, email *gmail.Email, types []AnalysisType) (*Analysis, error) {
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}
	if len(types) == 0 {
		types = AllTypes()
	}

	start := time.Now()

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(types)),
			openai.UserMessage(a.emailPrompt(email)),
		}),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONSchemaParam{
				Type: openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        openai.F("email_analysis"),
					Description: openai.F("Structured analysis of an email"),
					Schema:      openai.F(modelResultSchema),
					Strict:      openai.F(true),
				}),
			},
		),
		Model: openai.F(a.model),
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request failed for email %s: %w", email.ID, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("analysis returned no choices for email %s", email.ID)
	}

	var result modelResult
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis for email %s: %w", email.ID, err)
	}

	analysis := a.toAnalysis(email.ID, &result, types)
	analysis.TokensUsed = completion.Usage.TotalTokens
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("model returned invalid analysis for email %s: %w", email.ID, err)
	}

	if analysis.Confidence < a.confidenceThreshold {
		a.logger.Debug("low confidence analysis",
			logging.EmailID(email.ID),
			logging.Model(a.model),
			slog.Float64("confidence", analysis.Confidence))
	}

	a.logger.Debug("email analyzed",
		logging.EmailID(email.ID),
		logging.Model(a.model),
		slog.Duration("duration", time.Since(start)))

	return analysis, nil
}

// toAnalysis copies the model result into an Analysis, keeping only the
// requested fields and clamping confidence into [0, 1].
func (a *Analyzer) toAnalysis(emailID string, result *modelResult, types []AnalysisType) *Analysis {
	requested := make(map[AnalysisType]bool, len(types))
	for _, t := range types {
		requested[t] = true
	}

	analysis := &Analysis{
		EmailID:        emailID,
		Confidence:     clamp(result.Confidence),
		Keywords:       result.Keywords,
		ActionRequired: result.ActionRequired,
		AnalyzedAt:     time.Now().UTC(),
	}

	if requested[TypeSentiment] {
		analysis.Sentiment = result.Sentiment
	}
	if requested[TypePriority] {
		analysis.Priority = result.Priority
	}
	if requested[TypeCategory] {
		analysis.Category = result.Category
	}
	if requested[TypeSummary] {
		analysis.Summary = result.Summary
	}

	return analysis
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BatchResult is the per-email outcome of a batch analysis.
type BatchResult struct {
	EmailID  string
	Analysis *Analysis
	Err      error
}

// AnalyzeBatch analyzes emails concurrently with the given analysis type.
// A failed email produces an errored BatchResult; it does not abort the
// rest of the batch. Results come back in input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, emails []*gmail.Email, analysisType AnalysisType, concurrency int) []BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > maxBatchConcurrency {
		concurrency = maxBatchConcurrency
	}

	results := make([]BatchResult, len(emails))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, email := range emails {
		g.Go(func() error {
			analysis, err := a.Analyze(ctx, email, []AnalysisType{analysisType})
			results[i] = BatchResult{EmailID: email.ID, Analysis: analysis, Err: err}
			// Errors are captured per item; never abort the group
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// systemPrompt describes the analyst role and which aspects to report.
func systemPrompt(types []AnalysisType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	return "You are an email analysis assistant. Analyze the email the user provides " +
		"and fill in every field of the response schema. Focus on these aspects: " +
		strings.Join(names, ", ") + ". " +
		"Base the analysis only on the email content. Keep the summary factual and brief."
}

// emailPrompt renders the email for the model, truncating long bodies.
func (a *Analyzer) emailPrompt(email *gmail.Email) string {
	body := truncateBody(email.Body, a.maxBodyChars)

	var sb strings.Builder
	sb.WriteString("Subject: ")
	sb.WriteString(email.Subject)
	sb.WriteString("\nFrom: ")
	sb.WriteString(email.From)
	if !email.Date.IsZero() {
		sb.WriteString("\nDate: ")
		sb.WriteString(email.Date.Format(time.RFC1123Z))
	}
	sb.WriteString("\n\n")
	sb.WriteString(body)
	return sb.String()
}

// truncateBody cuts the body at maxChars bytes without splitting a UTF-8
// sequence. The byte cap may land mid-rune, so the cut backs up to the
// nearest rune start.
func truncateBody(body string, maxChars int) string {
	if len(body) <= maxChars {
		return body
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "\n[truncated]"
}
