package reformat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiReformatter calls the Gemini generateContent API with a structured
// JSON response schema.
type geminiReformatter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func newGeminiReformatter(model, apiKey string) *geminiReformatter {
	return &geminiReformatter{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Gemini request/response types
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiConfig    `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// formattedText is the structured payload the model is asked to return.
type formattedText struct {
	FormattedText string `json:"formatted_text"`
}

func (g *geminiReformatter) Reformat(ctx context.Context, text string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: grammarPrompt + "\n\n" + text}},
		}},
		GenerationConfig: geminiConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &geminiSchema{
				Type: "object",
				Properties: map[string]geminiSchema{
					"formatted_text": {Type: "string"},
				},
				Required: []string{"formatted_text"},
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("reformat: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("reformat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reformat: gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reformat: read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("reformat: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("reformat: gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reformat: gemini HTTP %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("reformat: gemini returned no candidates")
	}

	raw := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)

	// The model sometimes wraps the JSON payload in markdown fences.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var out formattedText
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("reformat: parse formatted_text: %w", err)
	}
	if out.FormattedText == "" {
		return "", fmt.Errorf("reformat: no formatted_text in response")
	}
	return out.FormattedText, nil
}
