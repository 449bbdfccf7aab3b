package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herba-guide/internal/models"
	"herba-guide/internal/service"
	"herba-guide/pkg/apperrors"
)

func row(species, desc, disease, recipe string) models.RemedyRow {
	return models.RemedyRow{
		SpeciesName: species,
		Description: desc,
		DiseaseName: disease,
		Recipe:      recipe,
	}
}

func TestAggregateRemedyGroupsByDisease(t *testing.T) {
	rows := []models.RemedyRow{
		row("Sirih", "desc", "Batuk", "Recipe A"),
		row("Sirih", "desc", "Batuk", "Recipe B"),
		row("Sirih", "desc", "Sakit Gigi", "Recipe C"),
	}

	doc, err := service.AggregateRemedy(rows)
	require.NoError(t, err)

	assert.Equal(t, "Sirih", doc.Name)
	assert.Equal(t, "desc", doc.Description)
	assert.Equal(t, []models.DiseaseEntry{
		{Disease: "Batuk", Recipes: []string{"Recipe A", "Recipe B"}},
		{Disease: "Sakit Gigi", Recipes: []string{"Recipe C"}},
	}, doc.Treats)
}

func TestAggregateRemedyPreservesFirstSeenOrder(t *testing.T) {
	// Diseases interleave; entries must follow first appearance, recipes
	// must follow row order within each disease.
	rows := []models.RemedyRow{
		row("Jahe", "d", "Mual", "R1"),
		row("Jahe", "d", "Masuk Angin", "R2"),
		row("Jahe", "d", "Mual", "R3"),
		row("Jahe", "d", "Batuk", "R4"),
		row("Jahe", "d", "Masuk Angin", "R5"),
	}

	doc, err := service.AggregateRemedy(rows)
	require.NoError(t, err)

	assert.Equal(t, []models.DiseaseEntry{
		{Disease: "Mual", Recipes: []string{"R1", "R3"}},
		{Disease: "Masuk Angin", Recipes: []string{"R2", "R5"}},
		{Disease: "Batuk", Recipes: []string{"R4"}},
	}, doc.Treats)
}

func TestAggregateRemedyKeepsDuplicateRecipes(t *testing.T) {
	rows := []models.RemedyRow{
		row("Kunyit", "d", "Maag", "Same recipe"),
		row("Kunyit", "d", "Maag", "Same recipe"),
	}

	doc, err := service.AggregateRemedy(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Same recipe", "Same recipe"}, doc.Treats[0].Recipes)
}

func TestAggregateRemedyEmptyInputIsNotFound(t *testing.T) {
	doc, err := service.AggregateRemedy(nil)
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAggregateRemedyMalformedRow(t *testing.T) {
	cases := map[string][]models.RemedyRow{
		"missing recipe":  {row("Sirih", "desc", "Batuk", "")},
		"missing disease": {row("Sirih", "desc", "", "Recipe A")},
		"missing species": {row("", "desc", "Batuk", "Recipe A")},
		"missing description": {
			row("Sirih", "desc", "Batuk", "Recipe A"),
			row("Sirih", "", "Batuk", "Recipe B"),
		},
	}

	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.AggregateRemedy(rows)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindAggregation, apperrors.KindOf(err))
		})
	}
}

func TestAggregateRemedyInconsistentSpecies(t *testing.T) {
	rows := []models.RemedyRow{
		row("Sirih", "desc", "Batuk", "Recipe A"),
		row("Jahe", "desc", "Batuk", "Recipe B"),
	}

	_, err := service.AggregateRemedy(rows)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAggregation, apperrors.KindOf(err))
}
