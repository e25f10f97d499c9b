package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zevarhq/zevar/internal/models"
)

// HTTPTranscriber sends whole recordings to a speech-to-text API in one
// request. The audio travels as a base64 data URL inside the JSON body.
type HTTPTranscriber struct {
	apiKey           string
	baseURL          string
	model            string
	primaryLanguages map[string]bool
	httpClient       *http.Client
}

// NewHTTPTranscriber creates a transcriber against an ASR endpoint.
// primaryLanguages is a comma-separated list of language codes the shop
// operates in; a detection outside the set flags the text for translation.
func NewHTTPTranscriber(baseURL, apiKey, model, primaryLanguages string) Transcriber {
	if model == "" {
		model = "asr"
	}
	if primaryLanguages == "" {
		primaryLanguages = "en,hi"
	}
	primary := make(map[string]bool)
	for _, lang := range strings.Split(primaryLanguages, ",") {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			primary[lang] = true
		}
	}
	return &HTTPTranscriber{
		apiKey:           apiKey,
		baseURL:          strings.TrimRight(baseURL, "/"),
		model:            model,
		primaryLanguages: primary,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type asrRequest struct {
	Model string `json:"model"`
	Audio struct {
		Format string `json:"format"`
		URL    string `json:"url"`
	} `json:"audio"`
}

type asrResponse struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (*models.Transcription, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio data is empty")
	}
	if format == "" {
		format = "wav"
	}

	var reqBody asrRequest
	reqBody.Model = t.model
	reqBody.Audio.Format = format
	reqBody.Audio.URL = fmt.Sprintf("data:audio/%s;base64,%s", format, base64.StdEncoding.EncodeToString(audio))

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/voice/asr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API returned status %d", resp.StatusCode)
	}

	var out asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("transcription failed: %s", out.Error)
	}

	lang := strings.ToLower(strings.TrimSpace(out.Language))
	return &models.Transcription{
		Text:             strings.TrimSpace(out.Text),
		DetectedLanguage: lang,
		Confidence:       out.Confidence,
		NeedsTranslation: lang != "" && !t.primaryLanguages[lang],
	}, nil
}
