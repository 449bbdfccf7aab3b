package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"herba-guide/internal/classifier"
	"herba-guide/internal/dto"
	"herba-guide/internal/history"
	"herba-guide/internal/imaging"
	"herba-guide/internal/models"
	"herba-guide/pkg/apperrors"
	"herba-guide/pkg/config"
)

// allowedMimeTypes is the upload whitelist; anything else is rejected before
// classification.
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Classifier identifies a plant species from a normalized image tensor.
type Classifier interface {
	Classify(ctx context.Context, tensor imaging.Tensor) (classifier.Prediction, error)
}

// RemedyCatalog looks up raw remedy rows for a species label.
type RemedyCatalog interface {
	FindBySpecies(ctx context.Context, name string) ([]models.RemedyRow, error)
}

// MediaStorage uploads the submitted photo and returns its public URL.
type MediaStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// PredictionInput is one classification request. UserID is empty for the
// anonymous flow, which skips upload and persistence.
type PredictionInput struct {
	Data        []byte
	ContentType string
	UserID      string
}

// PredictionService runs the prediction pipeline: validate, classify, look
// up, aggregate, then (for authenticated callers) persist. Each stage must
// finish before the next starts; classification and lookup run under their
// own deadlines. Upload and history append happen only after a successful
// aggregation, and at most one append happens per run.
type PredictionService struct {
	classifier Classifier
	catalog    RemedyCatalog
	media      MediaStorage
	store      history.Store
	cfg        *config.PipelineConfig
	logger     *zap.Logger
}

func NewPredictionService(
	cls Classifier,
	catalog RemedyCatalog,
	media MediaStorage,
	store history.Store,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{
		classifier: cls,
		catalog:    catalog,
		media:      media,
		store:      store,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *PredictionService) Predict(ctx context.Context, input PredictionInput) (*dto.PredictionResponse, error) {
	// Validating
	if _, ok := allowedMimeTypes[input.ContentType]; !ok {
		return nil, apperrors.NewInvalidInput("file is not a supported image type")
	}

	tensor, err := imaging.DecodeAndNormalize(input.Data)
	if err != nil {
		return nil, err
	}

	// Classifying; inference failure is fatal for the request, no retry.
	classifyCtx, cancelClassify := context.WithTimeout(ctx, s.cfg.ClassifyTimeout)
	prediction, err := s.classifier.Classify(classifyCtx, tensor)
	cancelClassify()
	if err != nil {
		return nil, apperrors.NewClassifier("inference failed", err)
	}

	// LookingUp
	lookupCtx, cancelLookup := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	rows, err := s.catalog.FindBySpecies(lookupCtx, prediction.Label)
	cancelLookup()
	if err != nil {
		return nil, err
	}

	// Aggregating; an empty row set surfaces as NotFound here.
	doc, err := AggregateRemedy(rows)
	if err != nil {
		return nil, err
	}

	resp := &dto.PredictionResponse{
		TanamanHerbal: dto.PlantResponse{
			Name:        doc.Name,
			Description: doc.Description,
			Treats:      doc.Treats,
		},
		Confidence: prediction.Confidence,
	}

	if input.UserID == "" {
		return resp, nil
	}

	// Persisting
	photoURL, err := s.uploadPhoto(ctx, input)
	if err != nil {
		if s.cfg.UploadPolicy == config.UploadPolicyAbort {
			return nil, err
		}
		// best_effort: answer without a photo and skip the history write so
		// no stored record ever points at a missing object.
		s.logger.Warn("Photo upload failed, returning prediction without persistence",
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		return resp, nil
	}

	createdAt := time.Now()
	record := models.PredictionRecord{
		Remedy:     *doc,
		Confidence: prediction.Confidence,
		PhotoURL:   photoURL,
		CreatedAt:  createdAt,
	}
	if err := s.store.Append(ctx, input.UserID, record); err != nil {
		return nil, err
	}

	resp.TanamanHerbal.PhotoURL = photoURL
	resp.CreatedAt = createdAt.Format(time.RFC3339)
	return resp, nil
}

func (s *PredictionService) uploadPhoto(ctx context.Context, input PredictionInput) (string, error) {
	if s.media == nil {
		// No bucket configured (local development); predictions are stored
		// without a photo URL.
		return "", nil
	}

	ext := allowedMimeTypes[input.ContentType]
	key := "predictions/" + uuid.New().String() + ext
	return s.media.Upload(ctx, key, input.Data, input.ContentType)
}

// History returns the caller's past predictions, most recent first.
func (s *PredictionService) History(ctx context.Context, userID string) ([]dto.PredictionResponse, error) {
	records, err := s.store.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

// SearchHistory filters the caller's history by plant name substring,
// case-insensitively, keeping the descending order.
func (s *PredictionService) SearchHistory(ctx context.Context, userID, plantName string) ([]dto.PredictionResponse, error) {
	records, err := s.store.Search(ctx, userID, plantName)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func toResponses(records []models.PredictionRecord) []dto.PredictionResponse {
	responses := make([]dto.PredictionResponse, len(records))
	for i, record := range records {
		responses[i] = dto.PredictionResponse{
			TanamanHerbal: dto.PlantResponse{
				Name:        record.Remedy.Name,
				Description: record.Remedy.Description,
				Treats:      record.Remedy.Treats,
				PhotoURL:    record.PhotoURL,
			},
			Confidence: record.Confidence,
			CreatedAt:  record.CreatedAt.Format(time.RFC3339),
		}
	}
	return responses
}
