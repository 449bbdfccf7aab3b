package service

import (
	"herba-guide/internal/models"
	"herba-guide/pkg/apperrors"
)

// AggregateRemedy folds raw catalog rows into one RemedyDocument. Diseases
// are grouped in first-seen row order and each row contributes exactly one
// recipe slot, duplicates included. The fold is deterministic: an explicit
// index keeps disease order independent of map iteration.
//
// An empty input means the predicted label has no catalog entry and yields a
// NotFound error. A row with any empty field, or a row disagreeing with the
// first row's species or description, is an input-contract violation and
// yields an Aggregation error.
func AggregateRemedy(rows []models.RemedyRow) (*models.RemedyDocument, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("no remedy catalog entry for predicted species")
	}

	doc := &models.RemedyDocument{
		Name:        rows[0].SpeciesName,
		Description: rows[0].Description,
	}

	index := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.SpeciesName == "" || row.Description == "" || row.DiseaseName == "" || row.Recipe == "" {
			return nil, apperrors.NewAggregation("remedy row is missing a field")
		}
		if row.SpeciesName != doc.Name || row.Description != doc.Description {
			return nil, apperrors.NewAggregation("remedy rows disagree on species or description")
		}

		if i, ok := index[row.DiseaseName]; ok {
			doc.Treats[i].Recipes = append(doc.Treats[i].Recipes, row.Recipe)
			continue
		}
		index[row.DiseaseName] = len(doc.Treats)
		doc.Treats = append(doc.Treats, models.DiseaseEntry{
			Disease: row.DiseaseName,
			Recipes: []string{row.Recipe},
		})
	}

	return doc, nil
}
