package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pocket-coach/internal/models"
	"pocket-coach/pkg/config"
	"pocket-coach/pkg/metrics"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	gigaChatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	gigaChatBaseURL  = "https://gigachat.devices.sberbank.ru/api/v1"
)

var errUnauthorized = errors.New("gigachat: unauthorized")

// LLMService talks to GigaChat: chat completions through gigago, file upload
// and vision through the REST API.
type LLMService struct {
	client     *gigago.Client
	config     *config.GigaChatConfig
	metrics    *metrics.Metrics
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	oauthURL   string

	mu          sync.Mutex
	accessToken string
}

func NewLLMService(cfg *config.GigaChatConfig, m *metrics.Metrics, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	s := &LLMService{
		client:     client,
		config:     cfg,
		metrics:    m,
		logger:     logger,
		httpClient: httpClient,
		baseURL:    gigaChatBaseURL,
		oauthURL:   gigaChatOAuthURL,
	}

	if _, err := s.token(ctx, true); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	logger.Info("GigaChat client ready", zap.String("model", cfg.Model))
	return s, nil
}

func (s *LLMService) Provider() string { return "gigachat" }

// Complete runs one chat completion with the given system instruction.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	defer s.observe("chat", time.Now())

	model := s.client.GenerativeModel(s.config.Model)
	model.SystemInstruction = systemPrompt
	model.Temperature = 0.3

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ExtractReceipt uploads the receipt and asks the vision model for its fields.
func (s *LLMService) ExtractReceipt(ctx context.Context, data []byte, fileName string) (*models.ReceiptExtraction, error) {
	defer s.observe("vision", time.Now())

	fileID, err := s.UploadFile(ctx, data, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	content, err := s.visionCompletion(ctx, fileID, receiptPrompt)
	if err != nil {
		return nil, err
	}

	extraction, err := parseReceiptExtraction(content)
	if err != nil {
		s.logger.Warn("Unparseable receipt extraction",
			zap.String("file_id", fileID),
			zap.String("content", truncate(content, 300)),
		)
		return nil, err
	}
	return extraction, nil
}

// UploadFile uploads a file for use in vision requests and returns its id.
// An expired token is refreshed once and the upload retried.
func (s *LLMService) UploadFile(ctx context.Context, data []byte, fileName string) (string, error) {
	id, err := s.uploadOnce(ctx, data, fileName, false)
	if errors.Is(err, errUnauthorized) {
		id, err = s.uploadOnce(ctx, data, fileName, true)
	}
	return id, err
}

func (s *LLMService) uploadOnce(ctx context.Context, data []byte, fileName string, refresh bool) (string, error) {
	token, err := s.token(ctx, refresh)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// "general" lets the file be attached to chat completions.
	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeTypeFor(fileName, data)},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(fileName))},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", errUnauthorized
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return "", fmt.Errorf("file too large (413)")
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	s.logger.Info("File uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

// visionCompletion sends prompt with the uploaded file attached. An expired
// token is refreshed once and the request retried.
func (s *LLMService) visionCompletion(ctx context.Context, fileID, prompt string) (string, error) {
	content, err := s.visionOnce(ctx, fileID, prompt, false)
	if errors.Is(err, errUnauthorized) {
		content, err = s.visionOnce(ctx, fileID, prompt, true)
	}
	return content, err
}

func (s *LLMService) visionOnce(ctx context.Context, fileID, prompt string, refresh bool) (string, error) {
	token, err := s.token(ctx, refresh)
	if err != nil {
		return "", err
	}

	requestBody := map[string]interface{}{
		"model": s.config.Model,
		"messages": []map[string]interface{}{
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature":        0.1,
		"stream":             false,
		"repetition_penalty": 1.0,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var visionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(visionResp.Choices) == 0 {
		return "", fmt.Errorf("no response from Vision API")
	}

	return strings.TrimSpace(visionResp.Choices[0].Message.Content), nil
}

// token returns the cached OAuth token, fetching a new one when asked to or
// when none is cached. The API key is already Base64-encoded.
func (s *LLMService) token(ctx context.Context, refresh bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && !refresh {
		return s.accessToken, nil
	}

	rqUID := uuid.New().String()
	formData := url.Values{}
	formData.Set("scope", s.config.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", rqUID)
	req.Header.Set("Authorization", "Basic "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("rq_uid", rqUID),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	s.accessToken = oauthResp.AccessToken
	return s.accessToken, nil
}

func (s *LLMService) observe(operation string, start time.Time) {
	s.metrics.ObserveLLM(s.Provider(), operation, time.Since(start))
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// mimeTypeFor guesses the upload's content type from its name, then its bytes.
func mimeTypeFor(fileName string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
