package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/dhanadurga/backend/internal/config"
)

// Client wraps the Gemini API for assistant completions. A nil *Client is
// a valid "offline" client.
type Client struct {
	inner  *genai.Client
	model  string
	logger *zap.Logger
}

func NewClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, nil
	}
	inner, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &Client{inner: inner, model: cfg.Model, logger: logger}, nil
}

// Complete sends the prompt, optionally with an attached image, and
// returns the raw model text. The model is pinned to low temperature and
// a JSON response type so replies stay machine-parseable.
func (c *Client) Complete(ctx context.Context, prompt string, image []byte, imageMIME string) (string, error) {
	if c == nil || c.inner == nil {
		return "", fmt.Errorf("gemini not configured")
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(image) > 0 {
		if imageMIME == "" {
			imageMIME = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(image, imageMIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temp := float32(0.1)
	resp, err := c.inner.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		c.logger.Error("gemini completion failed", zap.Error(err))
		return "", err
	}
	return resp.Text(), nil
}
