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

// serverTranscriber sends finished recordings to a local whisper HTTP
// server and concatenates the returned segments.
type serverTranscriber struct {
	baseURL string
	model   string
	device  string
	client  *http.Client
}

func newServerTranscriber(cfg config.TranscribeConfig) *serverTranscriber {
	return &serverTranscriber{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		model:   cfg.Model,
		device:  cfg.Device,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// serverResponse mirrors the JSON shape returned by whisper servers.
type serverResponse struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

func (t *serverTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
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
	if t.device != "" {
		if err := mw.WriteField("device", t.device); err != nil {
			return "", fmt.Errorf("transcribe: write device field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("transcribe: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/transcribe", &body)
	if err != nil {
		return "", fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: whisper server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcribe: whisper server HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed serverResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}

	if len(parsed.Segments) == 0 {
		return strings.TrimSpace(parsed.Text), nil
	}

	parts := make([]string, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func (t *serverTranscriber) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
