package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// CompleteOptions configures a single chat completion
type CompleteOptions struct {
	// MaxTokens limits the completion length, 0 leaves the model default
	MaxTokens int
	// Temperature controls sampling, only applied when non-negative
	Temperature float64
	// JSONMode asks the model to emit a JSON object
	JSONMode bool
}

// CompleteOption mutates CompleteOptions
type CompleteOption func(*CompleteOptions)

// WithMaxTokens limits the completion length
func WithMaxTokens(n int) CompleteOption {
	return func(o *CompleteOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) CompleteOption {
	return func(o *CompleteOptions) {
		o.Temperature = t
	}
}

// WithJSONMode asks the model to respond with a JSON object
func WithJSONMode() CompleteOption {
	return func(o *CompleteOptions) {
		o.JSONMode = true
	}
}

// Complete sends a system prompt and a user message to the model and returns
// the content of the first choice.
func Complete(ctx context.Context, model llms.Model, system, prompt string, opts ...CompleteOption) (string, error) {
	options := CompleteOptions{Temperature: -1}
	for _, opt := range opts {
		opt(&options)
	}

	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts("system", system))
	}
	messages = append(messages, llms.TextParts("human", prompt))

	var callOpts []llms.CallOption
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.Temperature >= 0 {
		callOpts = append(callOpts, llms.WithTemperature(options.Temperature))
	}
	if options.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	response, err := model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	return response.Choices[0].Content, nil
}
