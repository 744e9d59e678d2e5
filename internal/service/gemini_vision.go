package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-coach/internal/models"
	"pocket-coach/pkg/config"
	"pocket-coach/pkg/metrics"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiVision reads receipts and answers coach prompts with Gemini.
type GeminiVision struct {
	client  *genai.Client
	model   string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGeminiVision(ctx context.Context, cfg *config.GeminiConfig, m *metrics.Metrics, logger *zap.Logger) (*GeminiVision, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger.Info("Gemini client ready", zap.String("model", cfg.Model))
	return &GeminiVision{
		client:  client,
		model:   cfg.Model,
		metrics: m,
		logger:  logger,
	}, nil
}

func (g *GeminiVision) Provider() string { return "gemini" }

func (g *GeminiVision) ExtractReceipt(ctx context.Context, data []byte, fileName string) (*models.ReceiptExtraction, error) {
	defer g.observe("vision", time.Now())

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeTypeFor(fileName, data)),
		genai.NewPartFromText(receiptPrompt),
	}
	temperature := float32(0.1)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temperature,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini receipt extraction failed: %w", err)
	}

	content := resp.Text()
	extraction, err := parseReceiptExtraction(content)
	if err != nil {
		g.logger.Warn("Unparseable receipt extraction",
			zap.String("provider", g.Provider()),
			zap.String("content", truncate(content, 300)),
		)
		return nil, err
	}
	return extraction, nil
}

func (g *GeminiVision) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	defer g.observe("chat", time.Now())

	temperature := float32(0.3)
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}
	return text, nil
}

func (g *GeminiVision) observe(operation string, start time.Time) {
	g.metrics.ObserveLLM(g.Provider(), operation, time.Since(start))
}
