package index

import (
	"strconv"

	"github.com/smallnest/graphrag/model"
)

// ReadIndexerEntities joins the nodes and entities tables into model entities
// at the given community level. Node occurrences above the level are ignored,
// duplicates are collapsed to one entity carrying its maximum degree and the
// deepest community it was assigned to.
func ReadIndexerEntities(nodes []NodeRow, entities []EntityRow, communityLevel int) []model.Entity {
	type nodeAgg struct {
		degree    int64
		community int64
	}

	byTitle := make(map[string]nodeAgg)
	for _, node := range nodes {
		if node.Level > int64(communityLevel) {
			continue
		}
		community := int64(-1)
		if node.Community != nil {
			community = *node.Community
		}

		agg, ok := byTitle[node.Title]
		if !ok {
			byTitle[node.Title] = nodeAgg{degree: node.Degree, community: community}
			continue
		}
		if node.Degree > agg.degree {
			agg.degree = node.Degree
		}
		if community > agg.community {
			agg.community = community
		}
		byTitle[node.Title] = agg
	}

	seen := make(map[string]bool, len(byTitle))
	result := make([]model.Entity, 0, len(byTitle))
	for _, entity := range entities {
		agg, ok := byTitle[entity.Name]
		if !ok || seen[entity.Name] {
			continue
		}
		seen[entity.Name] = true

		result = append(result, model.Entity{
			ID:                   entity.ID,
			ShortID:              strconv.FormatInt(entity.HumanReadableID, 10),
			Title:                entity.Name,
			Type:                 entity.Type,
			Description:          entity.Description,
			DescriptionEmbedding: toFloat32(entity.DescriptionEmbedding),
			CommunityIDs:         []string{strconv.FormatInt(agg.community, 10)},
			TextUnitIDs:          entity.TextUnitIDs,
			Rank:                 int(agg.degree),
		})
	}
	return result
}

// ReadIndexerReports returns the community reports at or below the given
// level, restricted to communities that actually appear in the nodes table
// at that level.
func ReadIndexerReports(reports []ReportRow, nodes []NodeRow, communityLevel int) []model.CommunityReport {
	included := make(map[int64]bool)
	for _, node := range nodes {
		if node.Level <= int64(communityLevel) && node.Community != nil {
			included[*node.Community] = true
		}
	}

	result := make([]model.CommunityReport, 0, len(reports))
	for _, report := range reports {
		if report.Level > int64(communityLevel) || !included[report.CommunityID] {
			continue
		}
		community := strconv.FormatInt(report.CommunityID, 10)
		result = append(result, model.CommunityReport{
			ID:          report.ID,
			ShortID:     community,
			CommunityID: community,
			Title:       report.Title,
			Summary:     report.Summary,
			FullContent: report.FullContent,
			Rank:        report.Rank,
		})
	}
	return result
}

// ReadIndexerRelationships converts the relationships table into model edges.
func ReadIndexerRelationships(relationships []RelationshipRow) []model.Relationship {
	result := make([]model.Relationship, 0, len(relationships))
	for _, rel := range relationships {
		result = append(result, model.Relationship{
			ID:          rel.ID,
			ShortID:     strconv.FormatInt(rel.HumanReadableID, 10),
			Source:      rel.Source,
			Target:      rel.Target,
			Description: rel.Description,
			Weight:      rel.Weight,
			TextUnitIDs: rel.TextUnitIDs,
			Attributes:  map[string]any{"rank": rel.Rank},
		})
	}
	return result
}

// ReadIndexerTextUnits converts the text units table into model chunks.
func ReadIndexerTextUnits(textUnits []TextUnitRow) []model.TextUnit {
	result := make([]model.TextUnit, 0, len(textUnits))
	for i, unit := range textUnits {
		result = append(result, model.TextUnit{
			ID:              unit.ID,
			ShortID:         strconv.Itoa(i),
			Text:            unit.Text,
			NTokens:         int(unit.NTokens),
			DocumentIDs:     unit.DocumentIDs,
			EntityIDs:       unit.EntityIDs,
			RelationshipIDs: unit.RelationshipIDs,
		})
	}
	return result
}

// ReadIndexerCovariates converts the covariates table into model claims.
func ReadIndexerCovariates(covariates []CovariateRow) []model.Covariate {
	result := make([]model.Covariate, 0, len(covariates))
	for _, cov := range covariates {
		covariateType := cov.CovariateType
		if covariateType == "" {
			covariateType = "claim"
		}
		result = append(result, model.Covariate{
			ID:            cov.ID,
			ShortID:       strconv.FormatInt(cov.HumanReadableID, 10),
			SubjectID:     cov.SubjectID,
			SubjectType:   "entity",
			CovariateType: covariateType,
			TextUnitIDs:   []string{cov.TextUnitID},
			Attributes: map[string]any{
				"type":        cov.Type,
				"status":      cov.Status,
				"start_date":  cov.StartDate,
				"end_date":    cov.EndDate,
				"description": cov.Description,
				"source_text": cov.SourceText,
			},
		})
	}
	return result
}

func toFloat32(v []float64) []float32 {
	if v == nil {
		return nil
	}
	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(x)
	}
	return result
}
