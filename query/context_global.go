package query

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/model"
)

// GlobalContextBuilder renders community reports as token-bounded context
// windows for the map stage of a global search. Reports are weighted by how
// much of the source text their communities cover, so the most grounded
// reports land in the earliest windows.
type GlobalContextBuilder struct {
	Reports []model.CommunityReport
	// Entities weight the communities by distinct text unit coverage, optional
	Entities     []model.Entity
	TokenCounter llm.TokenCounter

	// UseCommunitySummary selects the short summary over the full report content
	UseCommunitySummary bool
	// MinCommunityRank drops reports ranked below this value
	MinCommunityRank float64
	// IncludeCommunityRank appends a rank column
	IncludeCommunityRank bool
	// IncludeCommunityWeight adds an occurrence weight column
	IncludeCommunityWeight bool
	// NormalizeCommunityWeight scales weights into [0, 1]
	NormalizeCommunityWeight bool
	// ShuffleData randomizes report order before the weight sort, so ties do
	// not always land in input order
	ShuffleData bool
	// RandomSeed seeds the shuffle for reproducible context windows
	RandomSeed int64
	// MaxContextTokens bounds each context window
	MaxContextTokens int
}

const reportsContextName = "Reports"

// BuildContext returns the context windows and the records they were built
// from, keyed by section name.
func (b *GlobalContextBuilder) BuildContext() ([]string, map[string]string) {
	counter := b.TokenCounter
	if counter == nil {
		counter = llm.ApproxTokenCounter{}
	}
	maxTokens := b.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = DefaultDataMaxTokens
	}

	weights := b.communityWeights()

	type weighted struct {
		report model.CommunityReport
		weight float64
	}
	rows := make([]weighted, 0, len(b.Reports))
	for _, report := range b.Reports {
		if report.Rank < b.MinCommunityRank {
			continue
		}
		rows = append(rows, weighted{report: report, weight: weights[report.CommunityID]})
	}
	if b.ShuffleData {
		rng := rand.New(rand.NewSource(b.RandomSeed))
		rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].weight != rows[j].weight {
			return rows[i].weight > rows[j].weight
		}
		return rows[i].report.Rank > rows[j].report.Rank
	})

	header := []string{"id", "title"}
	if b.IncludeCommunityWeight && weights != nil {
		header = append(header, "occurrence weight")
	}
	header = append(header, "content")
	if b.IncludeCommunityRank {
		header = append(header, "rank")
	}

	headerText := fmt.Sprintf("-----%s-----\n%s", reportsContextName, strings.Join(header, "|"))
	headerTokens := counter.NumTokens(headerText)

	var contexts []string
	var current []string
	currentTokens := headerTokens
	allRows := []string{strings.Join(header, "|")}

	flush := func() {
		if len(current) == 0 {
			return
		}
		contexts = append(contexts, headerText+"\n"+strings.Join(current, "\n"))
		current = nil
		currentTokens = headerTokens
	}

	for _, row := range rows {
		line := b.renderReport(row.report, row.weight, weights != nil)
		allRows = append(allRows, line)

		lineTokens := counter.NumTokens(line)
		if currentTokens+lineTokens > maxTokens {
			flush()
		}
		current = append(current, line)
		currentTokens += lineTokens
	}
	flush()

	records := map[string]string{
		"reports": strings.Join(allRows, "\n"),
	}
	return contexts, records
}

func (b *GlobalContextBuilder) renderReport(report model.CommunityReport, weight float64, haveWeights bool) string {
	id := report.ShortID
	if id == "" {
		id = report.ID
	}
	content := report.FullContent
	if b.UseCommunitySummary {
		content = report.Summary
	}

	cells := []string{id, report.Title}
	if b.IncludeCommunityWeight && haveWeights {
		cells = append(cells, fmt.Sprintf("%.2f", weight))
	}
	cells = append(cells, content)
	if b.IncludeCommunityRank {
		cells = append(cells, fmt.Sprintf("%g", report.Rank))
	}
	return strings.Join(cells, "|")
}

// communityWeights counts the distinct text units covered by each community's
// entities. Returns nil when no entities were provided.
func (b *GlobalContextBuilder) communityWeights() map[string]float64 {
	if !b.IncludeCommunityWeight || len(b.Entities) == 0 {
		return nil
	}

	units := make(map[string]map[string]bool)
	for _, entity := range b.Entities {
		for _, communityID := range entity.CommunityIDs {
			if units[communityID] == nil {
				units[communityID] = make(map[string]bool)
			}
			for _, unitID := range entity.TextUnitIDs {
				units[communityID][unitID] = true
			}
		}
	}

	weights := make(map[string]float64, len(units))
	var maxWeight float64
	for communityID, unitSet := range units {
		weights[communityID] = float64(len(unitSet))
		if weights[communityID] > maxWeight {
			maxWeight = weights[communityID]
		}
	}
	if b.NormalizeCommunityWeight && maxWeight > 0 {
		for communityID := range weights {
			weights[communityID] /= maxWeight
		}
	}
	return weights
}
