package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

type mockChatModel struct {
	response string
	err      error

	// captured from the last call
	lastMessages []llms.MessageContent
	lastOptions  llms.CallOptions
	calls        int
}

func (m *mockChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.lastMessages = messages
	m.lastOptions = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.lastOptions)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *mockChatModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.response, m.err
}

type emptyChatModel struct{}

func (m *emptyChatModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{}}, nil
}

func (m *emptyChatModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

type mockLangChainEmbedder struct {
	vector []float32
}

func (m *mockLangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector
	}
	return result, nil
}

func (m *mockLangChainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return m.vector, nil
}
