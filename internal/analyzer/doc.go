// Package analyzer performs LLM-backed analysis of emails.
//
// Analysis runs through the OpenAI chat completions API with JSON-schema
// structured output, so the model's response always matches the Analysis
// shape. Results are validated before being returned; an out-of-range
// confidence or unknown enum value from the model is an error, not data.
package analyzer
