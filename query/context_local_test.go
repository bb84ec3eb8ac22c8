package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/graphrag/llm"
)

func newLocalTestBuilder(ctx context.Context) *LocalContextBuilder {
	return &LocalContextBuilder{
		Entities:                  testEntities(),
		Relationships:             testRelationships(),
		Reports:                   testReports(),
		TextUnits:                 testTextUnits(),
		Covariates:                testCovariates(),
		EntityStore:               testEntityStore(ctx),
		Embedder:                  &fixedEmbedder{vector: []float32{1, 0, 0}},
		TokenCounter:              llm.ApproxTokenCounter{},
		IncludeEntityRank:         true,
		IncludeRelationshipWeight: true,
		IncludeCommunityRank:      true,
	}
}

func TestLocalContextBuilderSections(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)

	text, records, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.Nil(t, err)

	assert.Contains(t, text, "-----Reports-----")
	assert.Contains(t, text, "-----Entities-----")
	assert.Contains(t, text, "-----Claims-----")
	assert.Contains(t, text, "-----Relationships-----")
	assert.Contains(t, text, "-----Sources-----")

	assert.Contains(t, records["reports"], "Community 0")
	assert.Contains(t, records["entities"], "ALICE")
	assert.Contains(t, records["claims"], "SAFETY VIOLATION")
	assert.Contains(t, records["relationships"], "works for")
	assert.Contains(t, records["sources"], "Alice joined the lab in 2020.")

	// the whole selection made it in
	assert.Contains(t, records["entities"], "BOB")
	assert.Contains(t, records["entities"], "CAROL")
}

func TestLocalContextBuilderEntityOrdering(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)

	text, _, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.Nil(t, err)

	// the query vector matches ALICE best, then BOB
	alice := strings.Index(text, "1|ALICE|")
	bob := strings.Index(text, "2|BOB|")
	assert.True(t, alice >= 0 && bob >= 0)
	assert.True(t, alice < bob)
}

func TestLocalContextBuilderInNetworkRelationshipsFirst(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)

	_, records, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.Nil(t, err)

	relationships := records["relationships"]
	inNetwork := strings.Index(relationships, "works for")
	outNetwork := strings.Index(relationships, "knows")
	assert.True(t, inNetwork >= 0 && outNetwork >= 0)
	assert.True(t, inNetwork < outNetwork)
}

func TestLocalContextBuilderIncludeNames(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)
	builder.IncludeEntityNames = []string{"CAROL"}

	text, _, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.Nil(t, err)

	carol := strings.Index(text, "3|CAROL|")
	alice := strings.Index(text, "1|ALICE|")
	assert.True(t, carol >= 0 && alice >= 0)
	assert.True(t, carol < alice)
}

func TestLocalContextBuilderExcludeNames(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)
	builder.ExcludeEntityNames = []string{"ALICE"}

	_, records, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.Nil(t, err)
	assert.NotContains(t, records["entities"], "ALICE")
	assert.Contains(t, records["entities"], "BOB")
}

func TestLocalContextBuilderProportions(t *testing.T) {
	ctx := context.Background()
	builder := newLocalTestBuilder(ctx)
	builder.TextUnitProp = 0.7
	builder.CommunityProp = 0.4

	_, _, err := builder.BuildContext(ctx, "what does Alice do?")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "must sum to less than 1")
}

func TestLocalContextBuilderRequiresStore(t *testing.T) {
	builder := &LocalContextBuilder{Embedder: &fixedEmbedder{vector: []float32{1}}}
	_, _, err := builder.BuildContext(context.Background(), "q")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "entity store is required")
}

func TestLocalContextBuilderRequiresEmbedder(t *testing.T) {
	ctx := context.Background()
	builder := &LocalContextBuilder{EntityStore: testEntityStore(ctx)}
	_, _, err := builder.BuildContext(ctx, "q")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "embedder is required")
}

func TestRenderTableBudget(t *testing.T) {
	counter := llm.ApproxTokenCounter{}
	header := []string{"id", "text"}
	rows := [][]string{
		{"1", "short row"},
		{"2", "another short row"},
		{"3", "this one is cut off by the budget"},
	}

	section, table := renderTable("Sources", header, rows, counter, 18)
	assert.True(t, strings.HasPrefix(section, "-----Sources-----"))
	assert.Contains(t, section, "short row")
	assert.NotContains(t, section, "cut off")
	assert.NotContains(t, table, "cut off")

	empty, emptyTable := renderTable("Sources", header, nil, counter, 100)
	assert.Equal(t, "", empty)
	assert.Equal(t, "", emptyTable)
}
