// Package embedding is a small client for OpenAI-compatible sentence
// embedding endpoints, plus the vector math the bias scorer needs.
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyResponse is returned when the endpoint answers without vectors.
var ErrEmptyResponse = errors.New("embedding: empty response")

// Options configures a Client.
type Options struct {
	// BaseURL of the API, e.g. "http://localhost:8080/v1".
	BaseURL string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Model name passed with each request.
	Model string
	// Timeout per request. Defaults to 5s.
	Timeout time.Duration
}

// Client calls POST {BaseURL}/embeddings.
type Client struct {
	model  string
	client *resty.Client
}

// NewClient creates an embeddings client.
func NewClient(opt Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opt.BaseURL), "/")
	if base == "" {
		return nil, errors.New("embedding: base URL is required")
	}
	if strings.TrimSpace(opt.Model) == "" {
		return nil, errors.New("embedding: model is required")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 5 * time.Second
	}

	rc := resty.New().
		SetTimeout(opt.Timeout).
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json")
	if opt.APIKey != "" {
		rc.SetAuthToken(opt.APIKey)
	}

	return &Client{model: opt.Model, client: rc}, nil
}

type request struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type response struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request{Model: c.model, Input: texts}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("embedding: status %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed response
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("embedding: failed to decode response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		if len(parsed.Data) == 0 {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	out := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty,
// zero, or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}
