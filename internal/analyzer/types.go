package analyzer

import (
	"fmt"
	"time"
)

// AnalysisType selects which aspects of an email to analyze.
type AnalysisType string

const (
	TypeSentiment AnalysisType = "sentiment"
	TypePriority  AnalysisType = "priority"
	TypeCategory  AnalysisType = "category"
	TypeSummary   AnalysisType = "summary"
)

// AllTypes returns every analysis type, in the order results are reported.
func AllTypes() []AnalysisType {
	return []AnalysisType{TypeSentiment, TypePriority, TypeCategory, TypeSummary}
}

// ParseTypes validates a list of raw type strings. An empty list means all types.
func ParseTypes(raw []string) ([]AnalysisType, error) {
	if len(raw) == 0 {
		return AllTypes(), nil
	}

	valid := map[AnalysisType]bool{
		TypeSentiment: true,
		TypePriority:  true,
		TypeCategory:  true,
		TypeSummary:   true,
	}

	types := make([]AnalysisType, 0, len(raw))
	for _, r := range raw {
		t := AnalysisType(r)
		if !valid[t] {
			return nil, fmt.Errorf("unknown analysis type %q, must be one of: sentiment, priority, category, summary", r)
		}
		types = append(types, t)
	}
	return types, nil
}

// Sentiment values the model may return.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Priority values the model may return.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Analysis is the result of analyzing a single email. Fields for analysis
// types that were not requested are left empty.
type Analysis struct {
	EmailID        string    `json:"emailId"`
	Sentiment      string    `json:"sentiment,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	Category       string    `json:"category,omitempty"`
	Confidence     float64   `json:"confidence"`
	Summary        string    `json:"summary,omitempty"`
	Keywords       []string  `json:"keywords,omitempty"`
	ActionRequired bool      `json:"actionRequired"`
	AnalyzedAt     time.Time `json:"analyzedAt"`

	// TokensUsed is the total token usage the API reported for this
	// analysis. Kept out of the JSON payload; it only feeds metrics.
	TokensUsed int64 `json:"-"`
}

// Validate checks the enum fields and confidence range.
func (a *Analysis) Validate() error {
	if a.EmailID == "" {
		return fmt.Errorf("analysis has no email id")
	}
	switch a.Sentiment {
	case "", SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return fmt.Errorf("invalid sentiment %q", a.Sentiment)
	}
	switch a.Priority {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("invalid priority %q", a.Priority)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("confidence %f out of range [0, 1]", a.Confidence)
	}
	return nil
}
