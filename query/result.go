package query

import "encoding/json"

// SearchResult is the outcome of one search.
type SearchResult struct {
	// Response is the model's answer as returned
	Response string `json:"response"`
	// StructuredResponse holds the parsed records when the response is JSON,
	// nil for plain text answers
	StructuredResponse []map[string]any `json:"structured_response,omitempty"`
	// ContextData maps each context section to the records it was built from
	ContextData map[string]string `json:"context_data"`
	// ContextText is the full context sent to the model
	ContextText string `json:"context_text"`
	// CompletionTime is the wall time of the search in seconds
	CompletionTime float64 `json:"completion_time"`
	// LLMCalls counts the model invocations
	LLMCalls int `json:"llm_calls"`
	// PromptTokens counts the tokens of all prompts sent
	PromptTokens int `json:"prompt_tokens"`
}

// parseStructured decodes a JSON object or array response into records.
// Plain text responses yield nil.
func parseStructured(response string) []map[string]any {
	var object map[string]any
	if err := json.Unmarshal([]byte(response), &object); err == nil {
		return []map[string]any{object}
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(response), &records); err == nil {
		return records
	}
	return nil
}
