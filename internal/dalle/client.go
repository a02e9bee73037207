// Package dalle talks to the OpenAI image and moderation endpoints.
package dalle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/haojie06/dallebot/internal/options"
	openai "github.com/sashabaranov/go-openai"
)

var ErrNoResults = errors.New("no results returned")

// UpstreamError wraps a failed call to the image service. Its message is the
// service's own error text, suitable for showing to the user.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	var apiErr *openai.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.Message
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type Result struct {
	URLs          []string
	RevisedPrompt string
}

type Client struct {
	api *openai.Client
}

func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

func (c *Client) Generate(ctx context.Context, req options.GenerationRequest) (Result, error) {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              req.Count,
		Quality:        req.Quality,
		Size:           req.Size,
		Style:          req.Style,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return Result{}, &UpstreamError{Op: "generate", Err: err}
	}
	if len(resp.Data) == 0 {
		return Result{}, &UpstreamError{Op: "generate", Err: ErrNoResults}
	}
	result := Result{URLs: make([]string, 0, len(resp.Data))}
	for _, data := range resp.Data {
		result.URLs = append(result.URLs, data.URL)
		if result.RevisedPrompt == "" {
			result.RevisedPrompt = data.RevisedPrompt
		}
	}
	return result, nil
}

// namedReader gives the multipart upload a .png file name.
type namedReader struct {
	*bytes.Reader
	name string
}

func (r namedReader) Name() string {
	return r.name
}

func (c *Client) CreateVariation(ctx context.Context, image []byte, model string, count int, size string) ([]string, error) {
	resp, err := c.api.CreateVariImage(ctx, openai.ImageVariRequest{
		Image:          namedReader{Reader: bytes.NewReader(image), name: "image.png"},
		Model:          model,
		N:              count,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, &UpstreamError{Op: "variation", Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &UpstreamError{Op: "variation", Err: ErrNoResults}
	}
	urls := make([]string, 0, len(resp.Data))
	for _, data := range resp.Data {
		urls = append(urls, data.URL)
	}
	return urls, nil
}

// Moderate implements moderation.Moderator.
func (c *Client) Moderate(ctx context.Context, text string) (bool, map[string]float64, error) {
	resp, err := c.api.Moderations(ctx, openai.ModerationRequest{Input: text})
	if err != nil {
		return false, nil, &UpstreamError{Op: "moderation", Err: err}
	}
	if len(resp.Results) == 0 {
		return false, nil, &UpstreamError{Op: "moderation", Err: ErrNoResults}
	}
	result := resp.Results[0]
	scores, err := categoryScores(result.CategoryScores)
	if err != nil {
		return false, nil, err
	}
	return result.Flagged, scores, nil
}

// categoryScores flattens the typed score struct into category -> score.
func categoryScores(v any) (map[string]float64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal category scores: %w", err)
	}
	scores := make(map[string]float64)
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, fmt.Errorf("unmarshal category scores: %w", err)
	}
	return scores, nil
}
