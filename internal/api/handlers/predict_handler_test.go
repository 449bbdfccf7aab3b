package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"herba-guide/internal/api"
	"herba-guide/internal/api/handlers"
	"herba-guide/internal/classifier"
	"herba-guide/internal/dto"
	"herba-guide/internal/history"
	"herba-guide/internal/imaging"
	"herba-guide/internal/models"
	"herba-guide/internal/service"
	"herba-guide/pkg/auth"
	"herba-guide/pkg/config"
)

type stubClassifier struct {
	prediction classifier.Prediction
}

func (s *stubClassifier) Classify(_ context.Context, _ imaging.Tensor) (classifier.Prediction, error) {
	return s.prediction, nil
}

type stubCatalog struct {
	rows map[string][]models.RemedyRow
}

func (s *stubCatalog) FindBySpecies(_ context.Context, name string) ([]models.RemedyRow, error) {
	return s.rows[name], nil
}

type memoryUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (s *memoryUserStore) Create(_ context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func newTestApp(t *testing.T, label string, confidence float64) (*fiber.App, *auth.JWTManager) {
	t.Helper()

	log := zap.NewNop()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	catalog := &stubCatalog{rows: map[string][]models.RemedyRow{
		"Sirih": {
			{SpeciesName: "Sirih", Description: "desc", DiseaseName: "Batuk", Recipe: "Recipe A"},
			{SpeciesName: "Sirih", Description: "desc", DiseaseName: "Batuk", Recipe: "Recipe B"},
			{SpeciesName: "Sirih", Description: "desc", DiseaseName: "Sakit Gigi", Recipe: "Recipe C"},
		},
	}}

	predictionService := service.NewPredictionService(
		&stubClassifier{prediction: classifier.Prediction{Label: label, Confidence: confidence}},
		catalog,
		nil,
		history.NewMemoryStore(),
		&config.PipelineConfig{
			ClassifyTimeout: time.Second,
			LookupTimeout:   time.Second,
			UploadPolicy:    config.UploadPolicyAbort,
		},
		log,
	)
	authService := service.NewAuthService(newMemoryUserStore(), jwtManager, log)

	app := api.SetupRouter(
		handlers.NewAuthHandler(authService, log),
		handlers.NewPredictHandler(predictionService, log),
		handlers.NewHistoryHandler(predictionService, log),
		jwtManager,
		log,
	)
	return app, jwtManager
}

func photoRequest(t *testing.T, path, token string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 150, B: 40, A: 255})
		}
	}
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="leaf.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return out
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApp(t, "Sirih", 0.9)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "API WORKING", string(body))
}

func TestPredictImageRequiresToken(t *testing.T) {
	app, _ := newTestApp(t, "Sirih", 0.9)

	resp, err := app.Test(photoRequest(t, "/api/v1/predict_image", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPredictImageAnonReturnsGroupedRemedy(t *testing.T) {
	app, _ := newTestApp(t, "Sirih", 0.91)

	resp, err := app.Test(photoRequest(t, "/api/v1/predict_image_anon", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[dto.PredictImageResponse](t, resp)
	assert.Equal(t, "Sirih", out.Prediction.TanamanHerbal.Name)
	assert.Equal(t, 0.91, out.Prediction.Confidence)
	assert.Empty(t, out.Prediction.CreatedAt)
	require.Len(t, out.Prediction.TanamanHerbal.Treats, 2)
	assert.Equal(t, "Batuk", out.Prediction.TanamanHerbal.Treats[0].Disease)
	assert.Equal(t, []string{"Recipe A", "Recipe B"}, out.Prediction.TanamanHerbal.Treats[0].Recipes)
	assert.Equal(t, "Sakit Gigi", out.Prediction.TanamanHerbal.Treats[1].Disease)
}

func TestPredictImageUnknownLabelIs404(t *testing.T) {
	// Classifier predicts a label with no catalog entry.
	app, _ := newTestApp(t, "Anggrek", 0.8)

	resp, err := app.Test(photoRequest(t, "/api/v1/predict_image_anon", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPredictImageBadContentTypeIs400(t *testing.T) {
	app, _ := newTestApp(t, "Sirih", 0.9)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("just text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict_image_anon", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthenticatedPredictionAppearsInHistory(t *testing.T) {
	app, jwtManager := newTestApp(t, "Sirih", 0.87)

	userID := uuid.New().String()
	token, err := jwtManager.GenerateToken(userID, "budi", "budi@example.com")
	require.NoError(t, err)

	resp, err := app.Test(photoRequest(t, "/api/v1/predict_image", token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[dto.PredictImageResponse](t, resp)
	assert.Equal(t, 0.87, out.Prediction.Confidence)
	assert.NotEmpty(t, out.Prediction.CreatedAt)

	// History now holds exactly that record.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/gethistory", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hist := decodeJSON[dto.HistoryResponse](t, resp)
	require.Len(t, hist.History, 1)
	assert.Equal(t, 0.87, hist.History[0].Confidence)
	assert.Equal(t, "Sirih", hist.History[0].TanamanHerbal.Name)
	assert.NotEmpty(t, hist.History[0].CreatedAt)
}

func TestSearchHistoryFiltersByPlantName(t *testing.T) {
	app, jwtManager := newTestApp(t, "Sirih", 0.9)

	userID := uuid.New().String()
	token, err := jwtManager.GenerateToken(userID, "budi", "budi@example.com")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(photoRequest(t, "/api/v1/predict_image", token))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/search_history?plant_name=%s", "sir"), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hist := decodeJSON[dto.HistoryResponse](t, resp)
	assert.Len(t, hist.History, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search_history?plant_name=kunyit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	hist = decodeJSON[dto.HistoryResponse](t, resp)
	assert.Empty(t, hist.History)
}

func TestSearchHistoryRequiresPlantName(t *testing.T) {
	app, jwtManager := newTestApp(t, "Sirih", 0.9)

	token, err := jwtManager.GenerateToken(uuid.New().String(), "budi", "budi@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search_history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterThenLoginAndPredict(t *testing.T) {
	app, _ := newTestApp(t, "Sirih", 0.9)

	registerBody, _ := json.Marshal(dto.RegisterRequest{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "s3cret-password",
	})
	req := httptest.NewRequest(http.MethodPost, "/user/auth/register", bytes.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	authResp := decodeJSON[dto.AuthResponse](t, resp)
	require.NotEmpty(t, authResp.AccessToken)

	resp, err = app.Test(photoRequest(t, "/api/v1/predict_image", authResp.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	loginBody, _ := json.Marshal(dto.LoginRequest{
		Email:    "budi@example.com",
		Password: "s3cret-password",
	})
	req = httptest.NewRequest(http.MethodPost, "/user/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
