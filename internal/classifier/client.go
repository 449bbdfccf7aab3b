package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"herba-guide/internal/imaging"
	"herba-guide/pkg/config"

	"go.uber.org/zap"
)

// Prediction is the classifier's answer for one image. Confidence equals the
// maximum of Distribution; Label is the configured name for its index.
type Prediction struct {
	Label        string
	Confidence   float64
	Distribution []float64
}

// Client talks to the TensorFlow model server over its REST predict endpoint.
type Client struct {
	endpoint string
	apiKey   string
	labels   []string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a reusable HTTP client. Per-request deadlines come from
// the caller's context.
func NewClient(cfg *config.ClassifierConfig, logger *zap.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		labels:   cfg.Labels,
		http:     &http.Client{},
		logger:   logger,
	}
}

// Classify sends the normalized tensor for inference and maps the output
// distribution to a label.
func (c *Client) Classify(ctx context.Context, tensor imaging.Tensor) (Prediction, error) {
	payload := map[string]any{
		"instances": []imaging.Tensor{tensor},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out struct {
		Predictions [][]float64 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
		return Prediction{}, fmt.Errorf("model returned empty distribution")
	}

	dist := out.Predictions[0]
	if len(dist) != len(c.labels) {
		return Prediction{}, fmt.Errorf("distribution size %d does not match label set size %d", len(dist), len(c.labels))
	}

	best := 0
	for i, p := range dist {
		if p > dist[best] {
			best = i
		}
	}

	return Prediction{
		Label:        c.labels[best],
		Confidence:   dist[best],
		Distribution: dist,
	}, nil
}
