package prompttune

import (
	"strconv"
	"strings"

	"github.com/smallnest/graphrag/llm"
)

// CreateEntityExtractionPrompt assembles the tuned entity extraction prompt.
// Worked examples are appended in order until the token budget runs out,
// keeping at least minExamplesRequired of them regardless of size. Passing no
// entity types selects the untyped variant.
func CreateEntityExtractionPrompt(entityTypes, docs, examples []string, language string, counter llm.TokenCounter, maxTokens, minExamplesRequired int) string {
	if counter == nil {
		counter = llm.ApproxTokenCounter{}
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if minExamplesRequired <= 0 {
		minExamplesRequired = DefaultMinExamplesRequired
	}
	if language == "" {
		language = DefaultLanguage
	}

	template := UntypedGraphExtractionTemplate
	exampleTemplate := UntypedExampleExtractionTemplate
	typesList := strings.Join(entityTypes, ", ")
	if len(entityTypes) > 0 {
		template = GraphExtractionTemplate
		exampleTemplate = ExampleExtractionTemplate
	}

	budget := maxTokens - counter.NumTokens(template) - counter.NumTokens(typesList)

	var rendered strings.Builder
	for i, output := range examples {
		if i >= len(docs) {
			break
		}
		example := strings.NewReplacer(
			"{n}", strconv.Itoa(i+1),
			"{entity_types}", typesList,
			"{input_text}", docs[i],
			"{output}", output,
		).Replace(exampleTemplate)

		tokens := counter.NumTokens(example)
		if i >= minExamplesRequired && tokens > budget {
			break
		}
		rendered.WriteString(example)
		budget -= tokens
	}

	return strings.NewReplacer(
		"{entity_types}", typesList,
		"{examples}", strings.TrimSpace(rendered.String()),
		"{language}", language,
	).Replace(template)
}

// CreateEntitySummarizationPrompt assembles the tuned entity summarization
// prompt. The {entity_name} and {description_list} placeholders stay in the
// output for the indexing pipeline.
func CreateEntitySummarizationPrompt(persona, language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return strings.NewReplacer(
		"{persona}", persona,
		"{language}", language,
	).Replace(EntitySummarizationTemplate)
}

// CreateCommunityReportPrompt assembles the tuned community report prompt
// from the generated persona, reporter role and rating criteria. The
// {input_text} placeholder stays in the output.
func CreateCommunityReportPrompt(persona, role, ratingDescription, language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return strings.NewReplacer(
		"{persona}", persona,
		"{role}", role,
		"{report_rating_description}", ratingDescription,
		"{language}", language,
	).Replace(CommunityReportTemplate)
}
