package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func community(id int64) *int64 {
	return &id
}

func TestReadIndexerEntities(t *testing.T) {
	nodes := []NodeRow{
		{ID: "n-1", Title: "ALICE", Level: 0, Degree: 3, Community: community(0)},
		{ID: "n-2", Title: "ALICE", Level: 1, Degree: 5, Community: community(4)},
		{ID: "n-3", Title: "ALICE", Level: 2, Degree: 5, Community: community(9)},
		{ID: "n-4", Title: "BOB", Level: 0, Degree: 2, Community: nil},
	}
	entities := []EntityRow{
		{ID: "e-1", Name: "ALICE", Type: "PERSON", Description: "a person", HumanReadableID: 1, DescriptionEmbedding: []float64{0.5, 0.25}},
		{ID: "e-2", Name: "BOB", Type: "PERSON", Description: "another person", HumanReadableID: 2},
		{ID: "e-3", Name: "CAROL", Type: "PERSON", Description: "not in the graph", HumanReadableID: 3},
	}

	result := ReadIndexerEntities(nodes, entities, 1)
	assert.Equal(t, 2, len(result))

	alice := result[0]
	assert.Equal(t, "e-1", alice.ID)
	assert.Equal(t, "1", alice.ShortID)
	assert.Equal(t, "ALICE", alice.Title)
	assert.Equal(t, 5, alice.Rank)
	assert.Equal(t, []string{"4"}, alice.CommunityIDs)
	assert.Equal(t, []float32{0.5, 0.25}, alice.DescriptionEmbedding)

	bob := result[1]
	assert.Equal(t, 2, bob.Rank)
	assert.Equal(t, []string{"-1"}, bob.CommunityIDs)
}

func TestReadIndexerEntitiesDeduplicates(t *testing.T) {
	nodes := []NodeRow{
		{ID: "n-1", Title: "ALICE", Level: 0, Degree: 3, Community: community(0)},
	}
	entities := []EntityRow{
		{ID: "e-1", Name: "ALICE", HumanReadableID: 1},
		{ID: "e-1b", Name: "ALICE", HumanReadableID: 9},
	}

	result := ReadIndexerEntities(nodes, entities, 2)
	assert.Equal(t, 1, len(result))
	assert.Equal(t, "e-1", result[0].ID)
}

func TestReadIndexerReports(t *testing.T) {
	nodes := []NodeRow{
		{Title: "ALICE", Level: 0, Community: community(0)},
		{Title: "ALICE", Level: 1, Community: community(4)},
		{Title: "BOB", Level: 2, Community: community(9)},
	}
	reports := []ReportRow{
		{ID: "r-0", CommunityID: 0, Level: 0, Title: "Community 0", Summary: "s0", FullContent: "c0", Rank: 8.5},
		{ID: "r-4", CommunityID: 4, Level: 1, Title: "Community 4", Summary: "s4", FullContent: "c4", Rank: 6},
		{ID: "r-9", CommunityID: 9, Level: 2, Title: "Community 9", Summary: "s9", FullContent: "c9", Rank: 7},
		{ID: "r-7", CommunityID: 7, Level: 1, Title: "Community 7", Summary: "s7", FullContent: "c7", Rank: 5},
	}

	result := ReadIndexerReports(reports, nodes, 1)
	assert.Equal(t, 2, len(result))
	assert.Equal(t, "r-0", result[0].ID)
	assert.Equal(t, "0", result[0].CommunityID)
	assert.Equal(t, "0", result[0].ShortID)
	assert.InDelta(t, 8.5, result[0].Rank, 1e-6)
	assert.Equal(t, "r-4", result[1].ID)
}

func TestReadIndexerRelationships(t *testing.T) {
	relationships := []RelationshipRow{
		{ID: "rel-1", HumanReadableID: 1, Source: "ALICE", Target: "BOB", Description: "work together", Weight: 2, Rank: 8, TextUnitIDs: []string{"t-1"}},
	}

	result := ReadIndexerRelationships(relationships)
	assert.Equal(t, 1, len(result))
	assert.Equal(t, "rel-1", result[0].ID)
	assert.Equal(t, "1", result[0].ShortID)
	assert.Equal(t, "ALICE", result[0].Source)
	assert.Equal(t, "BOB", result[0].Target)
	assert.Equal(t, 2.0, result[0].Weight)
	assert.Equal(t, int64(8), result[0].Attributes["rank"])
}

func TestReadIndexerTextUnits(t *testing.T) {
	textUnits := []TextUnitRow{
		{ID: "t-1", Text: "first chunk", NTokens: 12, DocumentIDs: []string{"d-1"}, EntityIDs: []string{"e-1"}},
		{ID: "t-2", Text: "second chunk", NTokens: 8},
	}

	result := ReadIndexerTextUnits(textUnits)
	assert.Equal(t, 2, len(result))
	assert.Equal(t, "0", result[0].ShortID)
	assert.Equal(t, "1", result[1].ShortID)
	assert.Equal(t, "first chunk", result[0].Text)
	assert.Equal(t, 12, result[0].NTokens)
	assert.Equal(t, []string{"e-1"}, result[0].EntityIDs)
}

func TestReadIndexerCovariates(t *testing.T) {
	covariates := []CovariateRow{
		{
			ID:              "c-1",
			HumanReadableID: 1,
			Type:            "SECURITY BREACH",
			Description:     "alleged incident",
			SubjectID:       "ALICE",
			Status:          "TRUE",
			StartDate:       "2023-01-10",
			EndDate:         "2023-01-10",
			SourceText:      "Alice was involved in the incident.",
			TextUnitID:      "t-1",
		},
	}

	result := ReadIndexerCovariates(covariates)
	assert.Equal(t, 1, len(result))
	assert.Equal(t, "c-1", result[0].ID)
	assert.Equal(t, "entity", result[0].SubjectType)
	assert.Equal(t, "claim", result[0].CovariateType)
	assert.Equal(t, []string{"t-1"}, result[0].TextUnitIDs)
	assert.Equal(t, "SECURITY BREACH", result[0].Attributes["type"])
	assert.Equal(t, "TRUE", result[0].Attributes["status"])
}
