package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

var ErrNotConfigured = errors.New("image provider not configured")

// Request is one image to render.
type Request struct {
	Prompt         string
	NegativePrompt string
	Style          string
	AspectRatio    string
	Quality        string
}

type Result struct {
	URL           string
	RevisedPrompt string
}

// Generator renders images. Implementations must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// OpenAIClient talks to the OpenAI images endpoint.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "dall-e-3"
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	Style          string `json:"style"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Result, error) {
	if c == nil || c.apiKey == "" {
		return Result{}, ErrNotConfigured
	}

	body, err := json.Marshal(imageRequest{
		Model:          c.model,
		Prompt:         EnhancePrompt(req.Prompt, req.Style, req.NegativePrompt),
		N:              1,
		Size:           SizeFor(req.AspectRatio),
		Quality:        ProviderQuality(req.Quality),
		Style:          "vivid",
		ResponseFormat: "url",
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openaiError
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return Result{}, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return Result{}, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out imageResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return Result{}, errors.New("no image returned")
	}

	return Result{URL: out.Data[0].URL, RevisedPrompt: out.Data[0].RevisedPrompt}, nil
}
