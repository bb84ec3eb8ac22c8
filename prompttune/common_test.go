package prompttune

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// scriptedRoute maps a prompt substring to a canned response.
type scriptedRoute struct {
	match    string
	response string
	err      error
}

// scriptedModel returns canned responses routed on the rendered prompt text.
// Routes are checked in order, the fallback answers everything else.
type scriptedModel struct {
	mu       sync.Mutex
	routes   []scriptedRoute
	fallback string
	calls    int
	prompts  []string
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
				sb.WriteString("\n")
			}
		}
	}
	prompt := sb.String()

	m.calls++
	m.prompts = append(m.prompts, prompt)

	for _, r := range m.routes {
		if strings.Contains(prompt, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: r.response}},
			}, nil
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.fallback}},
	}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	response, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts("human", prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return response.Choices[0].Content, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *scriptedModel) recordedPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

const (
	testPersona       = "You are an expert chemist. You are skilled at analyzing reactions."
	testExampleOutput = `("entity"{tuple_delimiter}ETHANOL{tuple_delimiter}compound{tuple_delimiter}A common solvent){record_delimiter}` + "\n" + `("relationship"{tuple_delimiter}ETHANOL{tuple_delimiter}ACID{tuple_delimiter}Ethanol reacted with the acid{tuple_delimiter}8){completion_delimiter}`
	testRatingText    = "A float score between 0-10 that represents the relevance of the text to laboratory chemistry."
	testRoleText      = "A chemistry reporter that is analyzing laboratory notes."
)

// newTuningModel scripts responses for every generation stage.
func newTuningModel() *scriptedModel {
	return &scriptedModel{
		routes: []scriptedRoute{
			{match: "assigning a descriptive domain", response: "Chemistry"},
			{match: "persona description:", response: testPersona},
			{match: "primary language", response: "English"},
			{match: `"entities" as the key`, response: `{"entities": ["person", "organization"]}`},
			{match: "comma separated", response: "person, organization, compound"},
			{match: "Importance Criteria:", response: testRatingText},
			{match: "Role:", response: testRoleText},
			{match: "-Goal-", response: testExampleOutput},
		},
		fallback: "unexpected prompt",
	}
}

// mappedEmbedder embeds each text to the vector registered for it.
type mappedEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
}

func (e *mappedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := e.vectors[text]; ok {
			result[i] = vec
			continue
		}
		result[i] = e.fallback
	}
	return result, nil
}

func (e *mappedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *mappedEmbedder) Dimensions() int {
	return len(e.fallback)
}
