package models

import "time"

// RemedyRow is one raw catalog tuple linking a plant species to a disease and
// a recipe. Rows only exist between the lookup query and aggregation.
type RemedyRow struct {
	SpeciesName string
	Description string
	DiseaseName string
	Recipe      string
}

// DiseaseEntry groups every recipe the catalog holds for one disease.
type DiseaseEntry struct {
	Disease string   `json:"disease"`
	Recipes []string `json:"recipes"`
}

// RemedyDocument is the aggregated remedy information for one species.
// Diseases appear in first-seen row order and are unique within Treats; the
// document is never mutated after aggregation.
type RemedyDocument struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Treats      []DiseaseEntry `json:"treats"`
}

// PredictionRecord is one stored outcome of a classification request.
// Confidence is the maximum of the classifier's output distribution.
type PredictionRecord struct {
	Remedy     RemedyDocument `json:"remedy"`
	Confidence float64        `json:"confidence"`
	PhotoURL   string         `json:"photo_url"`
	CreatedAt  time.Time      `json:"created_at"`
}
