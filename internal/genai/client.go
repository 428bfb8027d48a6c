package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultTimeout         = 60 * time.Second
	defaultTextModel       = "gpt-3.5-turbo"
	defaultTranscribeModel = "whisper-1"
	defaultImageSize       = "512x512"
	defaultMaxTokens       = 500
	defaultTemperature     = 0.7

	// DefaultSystemMessage is sent when Options.SystemMessage is empty.
	DefaultSystemMessage = "You are a helpful, creative, and empathetic AI assistant."

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 4 << 20
)

// Config configures a Client. Only APIKey is required.
type Config struct {
	APIKey          string
	BaseURL         string
	TextModel       string
	TranscribeModel string
	ImageSize       string
	Timeout         time.Duration
}

// Client talks to an OpenAI-compatible text, speech-to-text and image API.
// Calls are never retried; failures are returned to the caller as-is.
type Client struct {
	apiKey          string
	baseURL         string
	textModel       string
	transcribeModel string
	imageSize       string
	httpClient      *http.Client
}

// New builds a Client. A missing API key is a configuration error.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:          strings.TrimSpace(cfg.APIKey),
		baseURL:         defaultBaseURL,
		textModel:       defaultTextModel,
		transcribeModel: defaultTranscribeModel,
		imageSize:       defaultImageSize,
		httpClient:      &http.Client{Timeout: defaultTimeout},
	}
	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.TextModel != "" {
		c.textModel = cfg.TextModel
	}
	if cfg.TranscribeModel != "" {
		c.transcribeModel = cfg.TranscribeModel
	}
	if cfg.ImageSize != "" {
		c.imageSize = cfg.ImageSize
	}
	if cfg.Timeout > 0 {
		c.httpClient.Timeout = cfg.Timeout
	}
	return c, nil
}

// GenerateText runs a single-turn chat completion and returns the first choice's text.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	req := chatRequest{
		Model:       c.textModel,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = opts.Temperature
	}
	system := opts.SystemMessage
	if system == "" {
		system = DefaultSystemMessage
	}
	req.Messages = []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var resp chatResponse
	if err := c.do(ctx, "/chat/completions", "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// TranscribeAudio uploads recorded audio and returns the transcript.
func (c *Client) TranscribeAudio(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcribing audio: no audio data")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := mw.WriteField("model", c.transcribeModel); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	var resp transcriptionResponse
	if err := c.do(ctx, "/audio/transcriptions", mw.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateImage requests one image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("generating image: empty prompt")
	}

	body, err := json.Marshal(imageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           c.imageSize,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var resp imageResponse
	if err := c.do(ctx, "/images/generations", "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", ErrEmptyResponse
	}
	return resp.Data[0].URL, nil
}

// do POSTs body to path and decodes a 200 JSON answer into out.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
