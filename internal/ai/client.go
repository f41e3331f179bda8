package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the generative service endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultVisionModel handles image understanding and image generation.
	DefaultVisionModel = "gemini-2.5-flash-image"

	// DefaultTextModel handles text-only generation with JSON replies.
	DefaultTextModel = "gemini-3-flash-preview"
)

var ErrEmptyResponse = errors.New("empty response from generative service")

// Client calls the generative AI service. Calls are single request/response
// round trips: no retry, no streaming, no schema enforcement on the wire.
// Callers validate and default defensively.
type Client struct {
	httpClient  *http.Client
	logger      *zap.Logger
	baseURL     string
	apiKey      string
	visionModel string
	textModel   string
}

// Config carries the client settings; zero-value fields fall back to the
// package defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	TextModel   string
}

// NewClient creates a generative service client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		visionModel: cfg.VisionModel,
		textModel:   cfg.TextModel,
	}
}

// Wire shapes for the generateContent call.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// AnalyzeGarment submits a captured still plus the classification
// instruction and returns the raw reply parts: any text (possibly holding
// embedded JSON) and, if the model produced one, the isolated garment image.
func (c *Client) AnalyzeGarment(ctx context.Context, imageData []byte, mimeType string) (text string, isolated []byte, err error) {
	instruction := `Analyze this image.
1. Identify the clothing item. Provide its name, category (Tops, Bottoms, Outer, Dresses), colorway, and 3 style tags. Format this as a JSON object.
2. Generate a new version of this exact garment isolated on a pure white background. Remove all background elements, humans, and distractions. Only the clothing should remain.`

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(imageData)}},
				{Text: instruction},
			},
		}},
	}

	resp, err := c.generate(ctx, c.visionModel, req)
	if err != nil {
		return "", nil, err
	}

	for _, p := range resp.Parts {
		if p.Text != "" {
			text += p.Text
		}
		if p.InlineData != nil {
			decoded, decErr := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if decErr != nil {
				c.logger.Warn("Discarding undecodable inline image from reply", zap.Error(decErr))
				continue
			}
			isolated = decoded
		}
	}

	return text, isolated, nil
}

// GenerateJSON submits a text-only prompt requesting a JSON-structured reply
// and returns the concatenated text parts verbatim.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	}

	resp, err := c.generate(ctx, c.textModel, req)
	if err != nil {
		return "", err
	}

	var text string
	for _, p := range resp.Parts {
		text += p.Text
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest) (*content, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generative service: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("Generative call completed",
		zap.String("model", model),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generative service returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	return &resp.Candidates[0].Content, nil
}
