package prompttune

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDocs = []string{
	"The solvent dissolved the compound within minutes.",
	"Ethanol reacted violently with the acid.",
}

func TestGenerateDomain(t *testing.T) {
	model := newTuningModel()

	domain, err := GenerateDomain(context.Background(), model, sampleDocs)
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", domain)

	prompts := model.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "The solvent dissolved the compound")
	assert.Contains(t, prompts[0], "Ethanol reacted violently")
}

func TestGeneratePersona(t *testing.T) {
	model := newTuningModel()

	persona, err := GeneratePersona(context.Background(), model, "Chemistry", "")
	require.NoError(t, err)
	assert.Equal(t, testPersona, persona)

	prompts := model.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "within the Chemistry domain")
	assert.NotContains(t, prompts[0], "{domain}")
}

func TestGeneratePersonaCustomTask(t *testing.T) {
	model := newTuningModel()

	_, err := GeneratePersona(context.Background(), model, "Chemistry", "Trace supply chains in the {domain} domain.")
	require.NoError(t, err)

	prompts := model.recordedPrompts()
	assert.Contains(t, prompts[0], "Trace supply chains in the Chemistry domain.")
}

func TestDetectLanguage(t *testing.T) {
	model := newTuningModel()

	language, err := DetectLanguage(context.Background(), model, sampleDocs)
	require.NoError(t, err)
	assert.Equal(t, "English", language)
}

func TestGenerateEntityTypesList(t *testing.T) {
	model := newTuningModel()

	types, err := GenerateEntityTypes(context.Background(), model, testPersona, "", sampleDocs, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "organization", "compound"}, types)

	prompts := model.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], testPersona)
	assert.Contains(t, prompts[0], "comma separated")
}

func TestGenerateEntityTypesJSON(t *testing.T) {
	model := newTuningModel()

	types, err := GenerateEntityTypes(context.Background(), model, testPersona, "", sampleDocs, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "organization"}, types)
}

func TestGenerateEntityTypesJSONFenced(t *testing.T) {
	model := &scriptedModel{fallback: "```json\n{\"entities\": [\"mineral\"]}\n```"}

	types, err := GenerateEntityTypes(context.Background(), model, "", "", sampleDocs, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"mineral"}, types)
}

func TestGenerateEntityTypesJSONMalformed(t *testing.T) {
	model := &scriptedModel{fallback: "person, organization"}

	_, err := GenerateEntityTypes(context.Background(), model, "", "", sampleDocs, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse entity types")
}

func TestGenerateEntityRelationshipExamples(t *testing.T) {
	model := newTuningModel()
	types := []string{"person", "organization"}

	examples, err := GenerateEntityRelationshipExamples(context.Background(), model, testPersona, types, sampleDocs, "English")
	require.NoError(t, err)
	require.Len(t, examples, 2)
	for _, example := range examples {
		assert.Equal(t, testExampleOutput, example)
	}
	assert.Equal(t, 2, model.callCount())

	for _, prompt := range model.recordedPrompts() {
		assert.Contains(t, prompt, "entity_types: [person, organization]")
		assert.Contains(t, prompt, "Return output in English")
	}
}

func TestGenerateEntityRelationshipExamplesUntyped(t *testing.T) {
	model := newTuningModel()

	examples, err := GenerateEntityRelationshipExamples(context.Background(), model, testPersona, nil, sampleDocs, "English")
	require.NoError(t, err)
	require.Len(t, examples, 2)

	for _, prompt := range model.recordedPrompts() {
		assert.Contains(t, prompt, "Suggest several labels")
		assert.NotContains(t, prompt, "entity_types: [")
	}
}

func TestGenerateEntityRelationshipExamplesError(t *testing.T) {
	model := &scriptedModel{
		routes: []scriptedRoute{
			{match: "-Goal-", err: errors.New("model unavailable")},
		},
	}

	_, err := GenerateEntityRelationshipExamples(context.Background(), model, "", nil, sampleDocs, "English")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate extraction examples")
}

func TestGenerateCommunityReportRating(t *testing.T) {
	model := newTuningModel()

	rating, err := GenerateCommunityReportRating(context.Background(), model, "Chemistry", testPersona, sampleDocs)
	require.NoError(t, err)
	assert.Equal(t, testRatingText, rating)

	prompts := model.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Domain: Chemistry")
	assert.Contains(t, prompts[0], "Persona: "+testPersona)
}

func TestGenerateCommunityReporterRole(t *testing.T) {
	model := newTuningModel()

	role, err := GenerateCommunityReporterRole(context.Background(), model, "Chemistry", testPersona, sampleDocs)
	require.NoError(t, err)
	assert.Equal(t, testRoleText, role)

	prompts := model.recordedPrompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Domain: Chemistry")
}

func TestParseEntityTypesListQuoted(t *testing.T) {
	types, err := parseEntityTypes(`"person", 'organization', , compound`, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "organization", "compound"}, types)
}

func TestTrimFence(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, trimFence("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, trimFence("```\n{\"a\": 1}\n```"))
	assert.Equal(t, "plain text", trimFence("plain text"))
}

func TestJoinDocs(t *testing.T) {
	assert.Equal(t, "a\nb", joinDocs([]string{"a", "b"}))
	assert.True(t, strings.Contains(joinDocs(sampleDocs), sampleDocs[1]))
}
