package prompttune

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
)

// exampleConcurrency bounds the fan-out of per-document example generation.
const exampleConcurrency = 8

// GenerateDomain asks the model for a short domain label describing the
// sample documents.
func GenerateDomain(ctx context.Context, model llms.Model, docs []string) (string, error) {
	prompt := strings.ReplaceAll(generateDomainPrompt, "{input_text}", joinDocs(docs))
	response, err := llm.Complete(ctx, model, "", prompt, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to generate domain: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// GeneratePersona asks the model to describe the expert best suited to the
// task. An empty task falls back to the default community analysis task for
// the domain.
func GeneratePersona(ctx context.Context, model llms.Model, domain, task string) (string, error) {
	if task == "" {
		task = defaultTask
	}
	task = strings.ReplaceAll(task, "{domain}", domain)
	prompt := strings.ReplaceAll(generatePersonaPrompt, "{sample_task}", task)

	response, err := llm.Complete(ctx, model, "", prompt, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to generate persona: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// DetectLanguage asks the model for the primary language of the sample
// documents.
func DetectLanguage(ctx context.Context, model llms.Model, docs []string) (string, error) {
	prompt := strings.ReplaceAll(detectLanguagePrompt, "{input_text}", joinDocs(docs))
	response, err := llm.Complete(ctx, model, "", prompt, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to detect language: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// GenerateEntityTypes asks the model for the entity types present in the
// sample documents. In JSON mode the model is held to a {"entities": [...]}
// object, otherwise a comma separated list is parsed.
func GenerateEntityTypes(ctx context.Context, model llms.Model, persona, task string, docs []string, jsonMode bool) ([]string, error) {
	if task == "" {
		task = defaultTask
	}
	template := generateEntityTypesPrompt
	opts := []llm.CompleteOption{llm.WithTemperature(0)}
	if jsonMode {
		template = generateEntityTypesJSONPrompt
		opts = append(opts, llm.WithJSONMode())
	}

	replacer := strings.NewReplacer(
		"{task}", task,
		"{input_text}", joinDocs(docs),
	)
	response, err := llm.Complete(ctx, model, persona, replacer.Replace(template), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entity types: %w", err)
	}
	return parseEntityTypes(response, jsonMode)
}

// GenerateEntityRelationshipExamples produces one worked extraction example
// per document. Documents are processed concurrently with a bounded worker
// fan-out and the outputs keep document order.
func GenerateEntityRelationshipExamples(ctx context.Context, model llms.Model, persona string, entityTypes []string, docs []string, language string) ([]string, error) {
	template := untypedEntityRelationshipExamplesPrompt
	if len(entityTypes) > 0 {
		template = entityRelationshipExamplesPrompt
	}
	replacer := strings.NewReplacer(
		"{entity_types}", strings.Join(entityTypes, ", "),
		"{language}", language,
	)
	template = replacer.Replace(template)

	type exampleResult struct {
		index  int
		output string
		err    error
	}

	results := make(chan exampleResult, len(docs))
	sem := make(chan struct{}, exampleConcurrency)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(index int, doc string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic generating example %d: %v", index, r)
					results <- exampleResult{index: index, err: fmt.Errorf("panic generating example %d: %v", index, r)}
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			prompt := strings.ReplaceAll(template, "{input_text}", doc)
			output, err := llm.Complete(ctx, model, persona, prompt, llm.WithTemperature(0))
			results <- exampleResult{index: index, output: strings.TrimSpace(output), err: err}
		}(i, doc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	outputs := make([]string, len(docs))
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		outputs[result.index] = result.output
	}
	if firstErr != nil {
		return nil, fmt.Errorf("failed to generate extraction examples: %w", firstErr)
	}
	return outputs, nil
}

// GenerateCommunityReportRating asks the model to describe the rating
// criteria a community report should apply for this corpus.
func GenerateCommunityReportRating(ctx context.Context, model llms.Model, domain, persona string, docs []string) (string, error) {
	replacer := strings.NewReplacer(
		"{domain}", domain,
		"{persona}", persona,
		"{input_text}", joinDocs(docs),
	)
	response, err := llm.Complete(ctx, model, persona, replacer.Replace(generateReportRatingPrompt), llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to generate report rating: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// GenerateCommunityReporterRole asks the model for the role the community
// report writer should assume.
func GenerateCommunityReporterRole(ctx context.Context, model llms.Model, domain, persona string, docs []string) (string, error) {
	replacer := strings.NewReplacer(
		"{domain}", domain,
		"{input_text}", joinDocs(docs),
	)
	response, err := llm.Complete(ctx, model, persona, replacer.Replace(generateCommunityReporterRolePrompt), llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to generate reporter role: %w", err)
	}
	return strings.TrimSpace(response), nil
}

func joinDocs(docs []string) string {
	return strings.Join(docs, "\n")
}

func parseEntityTypes(response string, jsonMode bool) ([]string, error) {
	response = trimFence(strings.TrimSpace(response))

	if jsonMode {
		var payload struct {
			Entities []string `json:"entities"`
		}
		if err := json.Unmarshal([]byte(response), &payload); err != nil {
			return nil, fmt.Errorf("failed to parse entity types response: %w", err)
		}
		return payload.Entities, nil
	}

	var types []string
	for _, part := range strings.Split(response, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			types = append(types, part)
		}
	}
	return types, nil
}

func trimFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
