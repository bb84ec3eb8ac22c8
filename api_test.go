package graphrag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/graphrag/config"
	"github.com/smallnest/graphrag/index"
	"github.com/smallnest/graphrag/prompttune"
)

// fakeRoute maps a prompt substring to a canned chat completion.
type fakeRoute struct {
	match    string
	response string
}

// fakeOpenAI serves canned chat completions and embeddings over HTTP.
// Chat responses are routed on the rendered prompt text, routes checked
// in order.
type fakeOpenAI struct {
	server *httptest.Server

	mu        sync.Mutex
	routes    []fakeRoute
	chatCalls int
	prompts   []string

	queryVector []float32
}

func newFakeOpenAI(t *testing.T, routes []fakeRoute) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{
		routes:      routes,
		queryVector: []float32{1, 0},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", f.handleChat)
	mux.HandleFunc("/v1/embeddings", f.handleEmbeddings)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// config returns a default configuration pointed at the fake server.
func (f *fakeOpenAI) config() *config.GraphRagConfig {
	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.APIBase = f.server.URL + "/v1"
	cfg.Embeddings.APIBase = f.server.URL + "/v1"
	return cfg
}

func (f *fakeOpenAI) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sb strings.Builder
	for _, msg := range req.Messages {
		sb.WriteString(contentText(msg.Content))
		sb.WriteString("\n")
	}
	prompt := sb.String()

	f.mu.Lock()
	f.chatCalls++
	f.prompts = append(f.prompts, prompt)
	answer := "unexpected prompt"
	for _, route := range f.routes {
		if strings.Contains(prompt, route.match) {
			answer = route.response
			break
		}
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": answer},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
}

func (f *fakeOpenAI) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input json.RawMessage `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	count := 1
	var list []string
	if json.Unmarshal(req.Input, &list) == nil {
		count = len(list)
	}

	data := make([]map[string]any, count)
	for i := range data {
		data[i] = map[string]any{"object": "embedding", "index": i, "embedding": f.queryVector}
	}
	writeJSON(w, map[string]any{
		"object": "list",
		"data":   data,
		"model":  "text-embedding-3-small",
		"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
	})
}

func (f *fakeOpenAI) chatCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

func (f *fakeOpenAI) recordedPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// contentText extracts the text of a chat message, accepting both the plain
// string and the multi-part content encodings.
func contentText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var parts []struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &parts) == nil {
		var sb strings.Builder
		for _, part := range parts {
			sb.WriteString(part.Text)
		}
		return sb.String()
	}
	return ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// testIndexData builds a two-entity index with one community, one report,
// one relationship, one claim and one source text.
func testIndexData() *index.IndexData {
	community := int64(0)
	return &index.IndexData{
		Nodes: []index.NodeRow{
			{ID: "n1", Title: "ALPHA CORP", Level: 0, Degree: 3, Community: &community},
			{ID: "n2", Title: "BETA LABS", Level: 0, Degree: 1, Community: &community},
		},
		Entities: []index.EntityRow{
			{
				ID: "e1", Name: "ALPHA CORP", Type: "organization", HumanReadableID: 0,
				Description:          "The largest supplier in the network",
				DescriptionEmbedding: []float64{1, 0},
				TextUnitIDs:          []string{"t1"},
			},
			{
				ID: "e2", Name: "BETA LABS", Type: "organization", HumanReadableID: 1,
				Description:          "A research laboratory funded by Alpha Corp",
				DescriptionEmbedding: []float64{0, 1},
				TextUnitIDs:          []string{"t1"},
			},
		},
		Reports: []index.ReportRow{
			{
				ID: "r0", CommunityID: 0, Level: 0, Title: "Alpha Corp supplier network",
				Summary:     "Alpha Corp and the labs around it.",
				FullContent: "# Alpha Corp supplier network\n\nAlpha Corp leads the supplier network and funds Beta Labs.",
				Rank:        8.5,
			},
		},
		TextUnits: []index.TextUnitRow{
			{
				ID: "t1", Text: "Alpha Corp signed a long term supply deal and funds Beta Labs.",
				NTokens: 16, EntityIDs: []string{"e1", "e2"}, RelationshipIDs: []string{"rel1"},
			},
		},
		Relationships: []index.RelationshipRow{
			{
				ID: "rel1", HumanReadableID: 0, Source: "ALPHA CORP", Target: "BETA LABS",
				Description: "Alpha Corp funds Beta Labs", Weight: 8, Rank: 2,
				TextUnitIDs: []string{"t1"},
			},
		},
		Covariates: []index.CovariateRow{
			{
				ID: "c1", HumanReadableID: 0, CovariateType: "claims", Type: "FUNDING",
				Description: "Alpha Corp funds Beta Labs research", SubjectID: "ALPHA CORP",
				Status: "TRUE", StartDate: "2023-01-01", EndDate: "NONE",
				SourceText: "Alpha Corp funds Beta Labs.", TextUnitID: "t1",
			},
		},
	}
}

func TestGlobalSearch(t *testing.T) {
	fake := newFakeOpenAI(t, []fakeRoute{
		{match: "---Analyst Reports---", response: "Alpha Corp anchors the supplier network."},
		{match: "---Data tables---", response: `{"points": [{"description": "Alpha Corp leads the network [Data: Reports (0)]", "score": 85}]}`},
	})

	opts := DefaultSearchOptions()
	opts.Query = "Who anchors the supplier network?"
	result, err := GlobalSearch(context.Background(), fake.config(), testIndexData(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Alpha Corp anchors the supplier network.", result.Response)
	assert.Equal(t, 2, result.LLMCalls)
	assert.Equal(t, 2, fake.chatCallCount())
	assert.Contains(t, result.ContextData["reports"], "Alpha Corp supplier network")
	assert.Contains(t, result.ContextText, "-----Reports-----")
}

func TestGlobalSearchNilData(t *testing.T) {
	fake := newFakeOpenAI(t, nil)

	opts := DefaultSearchOptions()
	opts.Query = "anything"
	_, err := GlobalSearch(context.Background(), fake.config(), nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index data is required")
}

func TestGlobalSearchEmptyQuery(t *testing.T) {
	fake := newFakeOpenAI(t, nil)

	_, err := GlobalSearch(context.Background(), fake.config(), testIndexData(), DefaultSearchOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
	assert.Equal(t, 0, fake.chatCallCount())
}

func TestLocalSearch(t *testing.T) {
	fake := newFakeOpenAI(t, []fakeRoute{
		{match: "---Data tables---", response: "Alpha Corp funds Beta Labs and anchors the network."},
	})

	opts := DefaultSearchOptions()
	opts.Query = "What does Alpha Corp fund?"
	result, err := LocalSearch(context.Background(), fake.config(), testIndexData(), opts)
	require.NoError(t, err)

	assert.Equal(t, "Alpha Corp funds Beta Labs and anchors the network.", result.Response)
	assert.Equal(t, 1, result.LLMCalls)
	assert.Equal(t, 1, fake.chatCallCount())

	assert.Contains(t, result.ContextData["entities"], "ALPHA CORP")
	assert.Contains(t, result.ContextData["claims"], "FUNDING")
	assert.Contains(t, result.ContextData["relationships"], "Alpha Corp funds Beta Labs")
	assert.Contains(t, result.ContextText, "-----Entities-----")

	// The single call carries the mixed context inside the system prompt.
	prompts := fake.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "-----Sources-----")
	assert.Contains(t, prompts[0], "What does Alpha Corp fund?")
}

func TestLocalSearchNilData(t *testing.T) {
	fake := newFakeOpenAI(t, nil)

	opts := DefaultSearchOptions()
	opts.Query = "anything"
	_, err := LocalSearch(context.Background(), fake.config(), nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index data is required")
}

const (
	testTunePersona = "You are an expert supply chain analyst. You are skilled at mapping supplier networks."
	testTuneExample = `("entity"{tuple_delimiter}ALPHA CORP{tuple_delimiter}organization{tuple_delimiter}The largest supplier){completion_delimiter}`
	testTuneRating  = "A float score between 0-10 that represents the relevance of the text to supply chains."
	testTuneRole    = "A supply chain reporter that is analyzing procurement records."
)

func tuningRoutes() []fakeRoute {
	return []fakeRoute{
		{match: "persona description:", response: testTunePersona},
		{match: "comma separated", response: "person, organization, compound"},
		{match: "Importance Criteria:", response: testTuneRating},
		{match: "Role:", response: testTuneRole},
		{match: "-Goal-", response: testTuneExample},
	}
}

func TestPromptTune(t *testing.T) {
	fake := newFakeOpenAI(t, tuningRoutes())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Alpha Corp signed a supply deal with Beta Labs."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("The procurement team audited every supplier contract."), 0o644))

	cfg := fake.config()
	cfg.Input.Dir = dir

	prompts, err := PromptTune(context.Background(), cfg, TuneOptions{
		Domain:          "Supply Chains",
		Language:        "English",
		SelectionMethod: prompttune.SelectTop,
		Limit:           2,
	})
	require.NoError(t, err)

	// persona, entity types, two examples, rating and role
	assert.Equal(t, 6, fake.chatCallCount())

	assert.Contains(t, prompts.EntityExtraction, "entity_types: [person, organization, compound]")
	assert.Contains(t, prompts.EntityExtraction, testTuneExample)
	assert.Contains(t, prompts.EntityExtraction, "Return output in English")
	assert.True(t, strings.HasPrefix(prompts.EntitySummarization, testTunePersona))
	assert.Contains(t, prompts.CommunityReport, testTuneRole)
	assert.Contains(t, prompts.CommunityReport, testTuneRating)

	var personaPrompt string
	for _, prompt := range fake.recordedPrompts() {
		if strings.Contains(prompt, "persona description:") {
			personaPrompt = prompt
		}
	}
	assert.Contains(t, personaPrompt, "within the Supply Chains domain")
}

func TestPromptTuneMissingInput(t *testing.T) {
	fake := newFakeOpenAI(t, tuningRoutes())

	cfg := fake.config()
	cfg.Input.Dir = filepath.Join(t.TempDir(), "missing")

	_, err := PromptTune(context.Background(), cfg, TuneOptions{Domain: "Supply Chains"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load input documents")
}
