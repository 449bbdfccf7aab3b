package dto

import "herba-guide/internal/models"

// PlantResponse is a RemedyDocument plus the stored photo URL. PhotoURL is
// empty for anonymous predictions.
type PlantResponse struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Treats      []models.DiseaseEntry `json:"treats"`
	PhotoURL    string                `json:"photo_url,omitempty"`
}

// PredictionResponse mirrors one PredictionRecord on the wire. CreatedAt is
// present only when the prediction was persisted.
type PredictionResponse struct {
	TanamanHerbal PlantResponse `json:"tanaman_herbal"`
	Confidence    float64       `json:"confidence"`
	CreatedAt     string        `json:"created_at,omitempty"`
}

type PredictImageResponse struct {
	Message    string             `json:"message"`
	Prediction PredictionResponse `json:"prediction"`
}

type HistoryResponse struct {
	Message string               `json:"message"`
	History []PredictionResponse `json:"history"`
}
