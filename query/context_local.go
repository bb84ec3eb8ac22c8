package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
	"github.com/smallnest/graphrag/model"
	"github.com/smallnest/graphrag/vectorstore"
)

// Default parameters of the mixed local context.
const (
	DefaultLocalMaxTokens    = 12000
	DefaultTextUnitProp      = 0.5
	DefaultCommunityProp     = 0.1
	DefaultTopKEntities      = 10
	DefaultTopKRelationships = 10

	// entity selection oversamples to survive exclusion filtering
	entityOversampleScale = 2
)

// LocalContextBuilder maps a query to entities through their description
// embeddings and mixes the communities, relationships, claims and source
// texts around them into one context window.
type LocalContextBuilder struct {
	Entities      []model.Entity
	Relationships []model.Relationship
	Reports       []model.CommunityReport
	TextUnits     []model.TextUnit
	// Covariates groups claims by type name, e.g. "claims"
	Covariates map[string][]model.Covariate

	// EntityStore holds the entity description embeddings
	EntityStore  vectorstore.Store
	Embedder     llm.Embedder
	TokenCounter llm.TokenCounter

	// MaxContextTokens bounds the whole mixed context
	MaxContextTokens int
	// TextUnitProp is the share of the budget spent on source texts
	TextUnitProp float64
	// CommunityProp is the share of the budget spent on community reports
	CommunityProp float64
	// TopKEntities is the number of entities mapped from the query
	TopKEntities int
	// TopKRelationships scales the out-of-network relationship budget
	TopKRelationships int

	IncludeEntityRank         bool
	IncludeRelationshipWeight bool
	IncludeCommunityRank      bool
	UseCommunitySummary       bool

	// IncludeEntityNames are always part of the selection
	IncludeEntityNames []string
	// ExcludeEntityNames never enter the selection
	ExcludeEntityNames []string
}

// BuildContext assembles the mixed context for query. It returns the context
// text and the records of every section keyed by name.
func (b *LocalContextBuilder) BuildContext(ctx context.Context, query string) (string, map[string]string, error) {
	if b.EntityStore == nil {
		return "", nil, fmt.Errorf("entity store is required for local context")
	}
	if b.Embedder == nil {
		return "", nil, fmt.Errorf("embedder is required for local context")
	}
	b.fillDefaults()
	if b.TextUnitProp+b.CommunityProp >= 1 {
		return "", nil, fmt.Errorf("text unit and community proportions must sum to less than 1")
	}

	selected, err := b.selectEntities(ctx, query)
	if err != nil {
		return "", nil, err
	}
	log.Info("local search mapped query to %d entities", len(selected))

	communityTokens := int(float64(b.MaxContextTokens) * b.CommunityProp)
	textUnitTokens := int(float64(b.MaxContextTokens) * b.TextUnitProp)
	localTokens := b.MaxContextTokens - communityTokens - textUnitTokens

	records := make(map[string]string)

	communitySection := b.buildCommunityContext(selected, communityTokens, records)
	localSection := b.buildLocalContext(selected, localTokens, records)
	textUnitSection := b.buildTextUnitContext(selected, textUnitTokens, records)

	var sections []string
	for _, section := range []string{communitySection, localSection, textUnitSection} {
		if section != "" {
			sections = append(sections, section)
		}
	}
	return strings.Join(sections, "\n\n"), records, nil
}

func (b *LocalContextBuilder) fillDefaults() {
	if b.TokenCounter == nil {
		b.TokenCounter = llm.ApproxTokenCounter{}
	}
	if b.MaxContextTokens <= 0 {
		b.MaxContextTokens = DefaultLocalMaxTokens
	}
	if b.TextUnitProp <= 0 {
		b.TextUnitProp = DefaultTextUnitProp
	}
	if b.CommunityProp <= 0 {
		b.CommunityProp = DefaultCommunityProp
	}
	if b.TopKEntities <= 0 {
		b.TopKEntities = DefaultTopKEntities
	}
	if b.TopKRelationships <= 0 {
		b.TopKRelationships = DefaultTopKRelationships
	}
}

// selectEntities returns the included entities followed by the store matches
// for the query, skipping excluded names and duplicates.
func (b *LocalContextBuilder) selectEntities(ctx context.Context, query string) ([]model.Entity, error) {
	byID := make(map[string]model.Entity, len(b.Entities))
	byTitle := make(map[string]model.Entity, len(b.Entities))
	for _, entity := range b.Entities {
		byID[entity.ID] = entity
		byTitle[entity.Title] = entity
	}

	excluded := make(map[string]bool, len(b.ExcludeEntityNames))
	for _, name := range b.ExcludeEntityNames {
		excluded[name] = true
	}

	var selected []model.Entity
	seen := make(map[string]bool)
	for _, name := range b.IncludeEntityNames {
		entity, ok := byTitle[name]
		if !ok || seen[entity.ID] {
			continue
		}
		selected = append(selected, entity)
		seen[entity.ID] = true
	}

	results, err := b.EntityStore.SearchByText(ctx, query, b.Embedder, b.TopKEntities*entityOversampleScale)
	if err != nil {
		return nil, fmt.Errorf("entity search failed: %w", err)
	}
	for _, result := range results {
		entity, ok := byID[result.ID]
		if !ok || excluded[entity.Title] || seen[entity.ID] {
			continue
		}
		selected = append(selected, entity)
		seen[entity.ID] = true
	}
	return selected, nil
}

// buildCommunityContext renders the reports of the communities the selected
// entities belong to, ordered by how many selected entities they contain.
func (b *LocalContextBuilder) buildCommunityContext(selected []model.Entity, maxTokens int, records map[string]string) string {
	if maxTokens <= 0 || len(b.Reports) == 0 {
		return ""
	}

	matches := make(map[string]int)
	for _, entity := range selected {
		for _, communityID := range entity.CommunityIDs {
			matches[communityID]++
		}
	}

	var reports []model.CommunityReport
	for _, report := range b.Reports {
		if matches[report.CommunityID] > 0 {
			reports = append(reports, report)
		}
	}
	sort.SliceStable(reports, func(i, j int) bool {
		mi, mj := matches[reports[i].CommunityID], matches[reports[j].CommunityID]
		if mi != mj {
			return mi > mj
		}
		return reports[i].Rank > reports[j].Rank
	})

	header := []string{"id", "title", "content"}
	if b.IncludeCommunityRank {
		header = append(header, "rank")
	}
	rows := make([][]string, 0, len(reports))
	for _, report := range reports {
		content := report.FullContent
		if b.UseCommunitySummary {
			content = report.Summary
		}
		row := []string{orID(report.ShortID, report.ID), report.Title, content}
		if b.IncludeCommunityRank {
			row = append(row, fmt.Sprintf("%g", report.Rank))
		}
		rows = append(rows, row)
	}

	section, table := renderTable("Reports", header, rows, b.TokenCounter, maxTokens)
	if table != "" {
		records["reports"] = table
	}
	return section
}

// buildLocalContext renders the selected entities, their claims and their
// relationships within one shared token budget.
func (b *LocalContextBuilder) buildLocalContext(selected []model.Entity, maxTokens int, records map[string]string) string {
	if maxTokens <= 0 || len(selected) == 0 {
		return ""
	}

	entityHeader := []string{"id", "entity", "description"}
	if b.IncludeEntityRank {
		entityHeader = append(entityHeader, "number of relationships")
	}
	entityRows := make([][]string, 0, len(selected))
	for _, entity := range selected {
		row := []string{orID(entity.ShortID, entity.ID), entity.Title, entity.Description}
		if b.IncludeEntityRank {
			row = append(row, fmt.Sprintf("%d", entity.Rank))
		}
		entityRows = append(entityRows, row)
	}
	entitySection, entityTable := renderTable("Entities", entityHeader, entityRows, b.TokenCounter, maxTokens)
	if entityTable != "" {
		records["entities"] = entityTable
	}
	remaining := maxTokens - b.TokenCounter.NumTokens(entitySection)

	sections := []string{entitySection}
	for _, name := range sortedKeys(b.Covariates) {
		if remaining <= 0 {
			break
		}
		section, table := b.buildClaimContext(name, b.Covariates[name], selected, remaining)
		if table != "" {
			records[name] = table
		}
		if section != "" {
			sections = append(sections, section)
			remaining -= b.TokenCounter.NumTokens(section)
		}
	}

	if remaining > 0 {
		section, table := b.buildRelationshipContext(selected, remaining)
		if table != "" {
			records["relationships"] = table
		}
		if section != "" {
			sections = append(sections, section)
		}
	}

	var nonEmpty []string
	for _, section := range sections {
		if section != "" {
			nonEmpty = append(nonEmpty, section)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func (b *LocalContextBuilder) buildClaimContext(name string, covariates []model.Covariate, selected []model.Entity, maxTokens int) (string, string) {
	header := []string{"id", "entity", "type", "status", "description"}
	var rows [][]string
	for _, entity := range selected {
		for _, cov := range covariates {
			if cov.SubjectID != entity.Title {
				continue
			}
			rows = append(rows, []string{
				orID(cov.ShortID, cov.ID),
				cov.SubjectID,
				attrString(cov.Attributes, "type"),
				attrString(cov.Attributes, "status"),
				attrString(cov.Attributes, "description"),
			})
		}
	}

	title := strings.ToUpper(name[:1]) + name[1:]
	return renderTable(title, header, rows, b.TokenCounter, maxTokens)
}

// buildRelationshipContext renders edges between selected entities first,
// then the strongest edges out of the selection.
func (b *LocalContextBuilder) buildRelationshipContext(selected []model.Entity, maxTokens int) (string, string) {
	if len(b.Relationships) == 0 {
		return "", ""
	}

	selectedTitles := make(map[string]bool, len(selected))
	for _, entity := range selected {
		selectedTitles[entity.Title] = true
	}

	var inNetwork, outNetwork []model.Relationship
	linkCount := make(map[string]int)
	for _, rel := range b.Relationships {
		sourceIn, targetIn := selectedTitles[rel.Source], selectedTitles[rel.Target]
		switch {
		case sourceIn && targetIn:
			inNetwork = append(inNetwork, rel)
		case sourceIn:
			outNetwork = append(outNetwork, rel)
			linkCount[rel.Target]++
		case targetIn:
			outNetwork = append(outNetwork, rel)
			linkCount[rel.Source]++
		}
	}

	sort.SliceStable(inNetwork, func(i, j int) bool {
		return inNetwork[i].Weight > inNetwork[j].Weight
	})
	// entities linked to several selected entities come first
	sort.SliceStable(outNetwork, func(i, j int) bool {
		li := linkCount[outNetwork[i].Source] + linkCount[outNetwork[i].Target]
		lj := linkCount[outNetwork[j].Source] + linkCount[outNetwork[j].Target]
		if li != lj {
			return li > lj
		}
		return outNetwork[i].Weight > outNetwork[j].Weight
	})

	budget := b.TopKRelationships * len(selected)
	if len(outNetwork) > budget {
		outNetwork = outNetwork[:budget]
	}

	header := []string{"id", "source", "target", "description"}
	if b.IncludeRelationshipWeight {
		header = append(header, "weight")
	}
	relationships := append(inNetwork, outNetwork...)
	rows := make([][]string, 0, len(relationships))
	for _, rel := range relationships {
		row := []string{orID(rel.ShortID, rel.ID), rel.Source, rel.Target, rel.Description}
		if b.IncludeRelationshipWeight {
			row = append(row, fmt.Sprintf("%g", rel.Weight))
		}
		rows = append(rows, row)
	}

	return renderTable("Relationships", header, rows, b.TokenCounter, maxTokens)
}

// buildTextUnitContext renders the source texts of the selected entities,
// preferring units shared with many selected relationships.
func (b *LocalContextBuilder) buildTextUnitContext(selected []model.Entity, maxTokens int, records map[string]string) string {
	if maxTokens <= 0 || len(b.TextUnits) == 0 {
		return ""
	}

	byID := make(map[string]model.TextUnit, len(b.TextUnits))
	for _, unit := range b.TextUnits {
		byID[unit.ID] = unit
	}

	selectedTitles := make(map[string]bool, len(selected))
	for _, entity := range selected {
		selectedTitles[entity.Title] = true
	}
	relCount := make(map[string]int)
	for _, rel := range b.Relationships {
		if !selectedTitles[rel.Source] && !selectedTitles[rel.Target] {
			continue
		}
		for _, unitID := range rel.TextUnitIDs {
			relCount[unitID]++
		}
	}

	type ranked struct {
		unit        model.TextUnit
		entityOrder int
		links       int
	}
	var units []ranked
	seen := make(map[string]bool)
	for order, entity := range selected {
		for _, unitID := range entity.TextUnitIDs {
			unit, ok := byID[unitID]
			if !ok || seen[unitID] {
				continue
			}
			seen[unitID] = true
			units = append(units, ranked{unit: unit, entityOrder: order, links: relCount[unitID]})
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].entityOrder != units[j].entityOrder {
			return units[i].entityOrder < units[j].entityOrder
		}
		return units[i].links > units[j].links
	})

	header := []string{"id", "text"}
	rows := make([][]string, 0, len(units))
	for _, r := range units {
		rows = append(rows, []string{orID(r.unit.ShortID, r.unit.ID), r.unit.Text})
	}

	section, table := renderTable("Sources", header, rows, b.TokenCounter, maxTokens)
	if table != "" {
		records["sources"] = table
	}
	return section
}

// renderTable renders a delimited context table under a token budget. It
// returns the section text and the records actually included.
func renderTable(name string, header []string, rows [][]string, counter llm.TokenCounter, maxTokens int) (string, string) {
	if len(rows) == 0 {
		return "", ""
	}

	headerLine := strings.Join(header, "|")
	section := fmt.Sprintf("-----%s-----\n%s", name, headerLine)
	tokens := counter.NumTokens(section)

	var included []string
	for _, row := range rows {
		line := strings.Join(row, "|")
		lineTokens := counter.NumTokens(line)
		if tokens+lineTokens > maxTokens {
			break
		}
		included = append(included, line)
		tokens += lineTokens
	}
	if len(included) == 0 {
		return "", ""
	}

	table := headerLine + "\n" + strings.Join(included, "\n")
	return section + "\n" + strings.Join(included, "\n"), table
}

func orID(shortID, id string) string {
	if shortID != "" {
		return shortID
	}
	return id
}

func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	value, ok := attrs[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func sortedKeys(m map[string][]model.Covariate) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
