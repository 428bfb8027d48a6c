package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_MissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		if _, err := New(Config{APIKey: key}); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("New(%q) error = %v, want ErrMissingAPIKey", key, err)
		}
	}
}

func TestGenerateText_RequestShape(t *testing.T) {
	var got chatRequest
	var gotAuth, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Hello!"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	text, err := c.GenerateText(context.Background(), "hi", Options{
		MaxTokens:     150,
		Temperature:   0.3,
		SystemMessage: "You are a navigation assistant.",
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "Hello!" {
		t.Errorf("text = %q, want Hello!", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if got.Model != "gpt-3.5-turbo" || got.MaxTokens != 150 || got.Temperature != 0.3 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "You are a navigation assistant." {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "hi" {
		t.Errorf("user message = %+v", got.Messages[1])
	}
}

func TestGenerateText_Defaults(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.GenerateText(context.Background(), "hi", Options{}); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got.MaxTokens != 500 || got.Temperature != 0.7 {
		t.Errorf("defaults not applied: max_tokens=%d temperature=%v", got.MaxTokens, got.Temperature)
	}
	if got.Messages[0].Content != DefaultSystemMessage {
		t.Errorf("system message = %q", got.Messages[0].Content)
	}
}

func TestGenerateText_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateText(context.Background(), "hi", Options{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateText_QuotaNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateText(context.Background(), "hi", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsQuota(err) {
		t.Errorf("IsQuota(%v) = false, want true", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", n)
	}
}

func TestGenerateText_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateText(context.Background(), "hi", Options{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != 500 || se.Body != "boom" {
		t.Errorf("StatusError = %+v", se)
	}
	if IsQuota(err) {
		t.Error("500 reported as quota error")
	}
}

func TestGenerateText_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.GenerateText(context.Background(), "hi", Options{}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestTranscribeAudio(t *testing.T) {
	var gotModel, gotFilename string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		gotModel = r.FormValue("model")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		gotFilename = hdr.Filename
		gotAudio, _ = io.ReadAll(f)
		fmt.Fprint(w, `{"text":"recipe for butter chicken"}`)
	}))
	defer srv.Close()

	text, err := newTestClient(t, srv).TranscribeAudio(context.Background(), []byte("webm-bytes"))
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if text != "recipe for butter chicken" {
		t.Errorf("text = %q", text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotFilename != "audio.webm" {
		t.Errorf("filename = %q, want audio.webm", gotFilename)
	}
	if string(gotAudio) != "webm-bytes" {
		t.Errorf("audio = %q", gotAudio)
	}
}

func TestTranscribeAudio_Empty(t *testing.T) {
	c, _ := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if _, err := c.TranscribeAudio(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestGenerateImage(t *testing.T) {
	var got imageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"data":[{"url":"https://img.example/1.png"}]}`)
	}))
	defer srv.Close()

	url, err := newTestClient(t, srv).GenerateImage(context.Background(), "a bowl of soup")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://img.example/1.png" {
		t.Errorf("url = %q", url)
	}
	if got.Size != "512x512" || got.N != 1 || got.ResponseFormat != "url" || got.Prompt != "a bowl of soup" {
		t.Errorf("request = %+v", got)
	}
}

func TestGenerateImage_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateImage(context.Background(), "x")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}
