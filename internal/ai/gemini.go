package ai

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	// ErrNotConfigured indicates the API credential is missing; no network call is made
	ErrNotConfigured = errors.New("generation API key is not configured")
	// ErrQuotaExceeded indicates transient upstream quota exhaustion
	ErrQuotaExceeded = errors.New("generation API quota exceeded")
	// ErrInvalidCredential indicates the API key was rejected upstream
	ErrInvalidCredential = errors.New("generation API key is invalid or expired")
	// ErrEmptyGeneration indicates the API returned no text
	ErrEmptyGeneration = errors.New("empty response from generation API")
	// ErrGenerationFailed is the generic upstream failure
	ErrGenerationFailed = errors.New("failed to generate response")
)

// GenerateRequest carries everything the generator needs for one reply
type GenerateRequest struct {
	Username       string
	AIName         string
	RecentMessages []ContextMessage
	Preferences    Preferences
}

// Config configures the Gemini client
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint (used in tests)
	BaseURL string
}

// Client is a stateless adapter over the Gemini generateContent API.
// It holds no conversation state between calls.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Gemini client
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateReply builds the companion prompt from the supplied context and
// requests a single completion with fixed sampling parameters. The prompt is
// the sole turn of a fresh conversation.
func (c *Client) GenerateReply(ctx context.Context, req GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	aiName := req.AIName
	if aiName == "" {
		aiName = req.Preferences.AIName
	}

	prompt := BuildPrompt(req.Username, aiName, TimeOfDay(time.Now().Hour()), req.RecentMessages)

	body := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.9,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: 150,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %v", ErrGenerationFailed, err)
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: unmarshaling response: %v", ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK || genResp.Error != nil {
		return "", c.mapAPIError(resp.StatusCode, genResp.Error)
	}

	text := extractText(genResp)
	if text == "" {
		return "", ErrEmptyGeneration
	}

	return text, nil
}

// mapAPIError translates upstream failures into the typed error taxonomy
func (c *Client) mapAPIError(statusCode int, apiErr *apiError) error {
	message := ""
	if apiErr != nil {
		message = apiErr.Message
	}
	lower := strings.ToLower(message)

	switch {
	case statusCode == http.StatusTooManyRequests || strings.Contains(lower, "quota"):
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, message)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden ||
		strings.Contains(lower, "api key"):
		return fmt.Errorf("%w: %s", ErrInvalidCredential, message)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, statusCode, message)
	}
}

func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
