package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chaz8081/godictate/internal/config"
)

const defaultTranscriptionURL = "https://api.openai.com/v1/audio/transcriptions"

// openaiTranscriber sends finished recordings to the hosted OpenAI
// transcription endpoint.
type openaiTranscriber struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

func newOpenAITranscriber(cfg config.TranscribeConfig, apiKey string) *openaiTranscriber {
	model := cfg.Model
	if model == "" || !strings.Contains(model, "-") {
		// Local model sizes like "base" have no hosted counterpart.
		model = "whisper-1"
	}
	return &openaiTranscriber{
		apiKey: apiKey,
		url:    defaultTranscriptionURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (t *openaiTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	if err := checkAudioFile(path); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("transcribe: open %q: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("transcribe: read audio: %w", err)
	}
	if err := mw.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("transcribe: write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("transcribe: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &body)
	if err != nil {
		return "", fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: transcription API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcribe: transcription API HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}

	return strings.TrimSpace(parsed.Text), nil
}

func (t *openaiTranscriber) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
