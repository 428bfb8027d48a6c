package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/feed"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/preferences"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/voice"
)

type recordedRequest struct {
	Method      string
	Path        string
	Body        string
	Auth        string
	ContentType string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.RequestURI(),
			Body:        body.String(),
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

// useServer points commands run through rootCmd at ts.
func useServer(t *testing.T, ts *testServer) {
	t.Helper()
	old := newAPIClient
	newAPIClient = func() (*apiClient, error) { return ts.client(), nil }
	t.Cleanup(func() { newAPIClient = old })
}

// captureStdout redirects command results into a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

var ctx = context.Background()

func TestRouteCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /route": `{"kind":"generate","generate":{"kind":"recipe","topic":"shakshuka","target_section":"food"}}`,
	})

	resp, err := ts.client().post(ctx, "/route", map[string]string{"transcript": "recipe for shakshuka"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var d intent.Decision
	if err := decodeJSON(resp, &d); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if d.Kind != intent.KindGenerate || d.Generate.Kind != content.KindRecipe {
		t.Fatalf("decision = %+v", d)
	}

	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}
	if r.ContentType != "application/json" {
		t.Errorf("content type = %q", r.ContentType)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["transcript"] != "recipe for shakshuka" {
		t.Errorf("body.transcript = %q", body["transcript"])
	}
}

func TestRouteCommand_ViaRoot(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /route": `{"kind":"converse","converse":{"reply_text":"hi"}}`,
	})
	useServer(t, ts)

	if err := execute(t, "route", "hello", "there"); err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(ts.requests) != 1 || !strings.Contains(ts.requests[0].Body, `"hello there"`) {
		t.Errorf("requests = %+v", ts.requests)
	}
}

func TestRouteCommand_MissingArgs(t *testing.T) {
	err := execute(t, "route")
	if err == nil {
		t.Fatal("expected error for missing args")
	}
}

func TestDescribeDecision(t *testing.T) {
	old := noColor
	noColor = true
	defer func() { noColor = old }()

	tests := []struct {
		d    intent.Decision
		want string
	}{
		{intent.NewGenerate(content.KindTravel, "Lisbon"), "generate travel, topic Lisbon, then open travel"},
		{intent.NewGenerate(content.KindJournal, ""), "topic (none)"},
		{intent.NewNavigate("music", "Enjoy!"), "navigate to music: Enjoy!"},
		{intent.NewConverse("Hello there"), "reply: Hello there"},
	}
	for _, tt := range tests {
		if got := describeDecision(tt.d); !strings.Contains(got, tt.want) {
			t.Errorf("describeDecision(%+v) = %q, want it to contain %q", tt.d, got, tt.want)
		}
	}
}

func TestVoiceCommand_SendsRawAudio(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /voice": `{"transcript":"take me to music","decision":{"kind":"navigate","navigate":{"target_section":"music","confirmation_message":"Enjoy!"}},"title":"Navigating","message":"Sure! I'm taking you to music. Enjoy!","section":"music"}`,
	})

	resp, err := ts.client().post(ctx, "/voice", []byte("RIFFfake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out voice.Outcome
	if err := decodeJSON(resp, &out); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if out.Section != "music" || out.Decision.Kind != intent.KindNavigate {
		t.Errorf("outcome = %+v", out)
	}
	r := ts.requests[0]
	if r.Body != "RIFFfake" {
		t.Errorf("body = %q, want raw audio", r.Body)
	}
	if r.ContentType != "application/octet-stream" {
		t.Errorf("content type = %q", r.ContentType)
	}
}

func TestVoiceCommand_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.webm")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := execute(t, "voice", path)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("err = %v, want empty-file error", err)
	}
}

func TestFeedCommand_RefreshAndMood(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /feed/music":          `{"section":"music","items":[]}`,
		"POST /feed/music/refresh": `{"section":"music","items":[]}`,
	})
	useServer(t, ts)

	if err := execute(t, "feed", "Music", "--mood", "calm evening"); err != nil {
		t.Fatalf("feed: %v", err)
	}
	feedCmd.Flags().Set("mood", "")
	if err := execute(t, "feed", "music", "--refresh"); err != nil {
		t.Fatalf("feed --refresh: %v", err)
	}
	feedCmd.Flags().Set("refresh", "false")

	if len(ts.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(ts.requests))
	}
	if r := ts.requests[0]; r.Method != "GET" || r.Path != "/feed/music?mood=calm+evening" {
		t.Errorf("first request = %s %s", r.Method, r.Path)
	}
	if r := ts.requests[1]; r.Method != "POST" || r.Path != "/feed/music/refresh" {
		t.Errorf("second request = %s %s", r.Method, r.Path)
	}
}

func TestRenderFeed(t *testing.T) {
	old := noColor
	noColor = true
	defer func() { noColor = old }()

	var buf bytes.Buffer
	renderFeed(&buf, []feed.ContentItem{
		{ID: "id-1", Title: "Today's Recipe", BodyHTML: "<p><strong>Shakshuka</strong> &amp; bread</p>", Tags: []string{"food"}},
		{ID: "id-2", Title: "Sky", BodyHTML: "<p>Look up</p>", ImageURL: "https://img.example/a.png"},
	})

	out := buf.String()
	for _, want := range []string{"Today's Recipe  id-1", "Shakshuka & bread", "Tags: food", "Image: https://img.example/a.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<strong>") {
		t.Errorf("output still has markup:\n%s", out)
	}
}

func TestGenerateCommand_RequiresTopic(t *testing.T) {
	err := execute(t, "generate", "recipe")
	if err == nil || !strings.Contains(err.Error(), "topic") {
		t.Errorf("err = %v, want topic error", err)
	}
	err = execute(t, "generate", "haiku", "rain")
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGenerateCommand_Journal(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /generate/journal": `{"kind":"journal","section":"wellness","result":{"prompt":"What made you smile?"}}`,
	})
	useServer(t, ts)

	if err := execute(t, "generate", "journal"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ts.requests) != 1 || ts.requests[0].Body != `{"topic":""}` {
		t.Errorf("requests = %+v", ts.requests)
	}
}

func TestCaptionCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /caption": `{"caption":"Light through old pages."}`,
	})
	useServer(t, ts)

	out := captureStdout(t)

	if err := execute(t, "caption"); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if len(ts.requests) != 1 || ts.requests[0].Body != "" {
		t.Errorf("requests = %+v", ts.requests)
	}
	if got := out.String(); got != "\"Light through old pages.\"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestProfileImport(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PUT /profile": `{"status":"updated"}`,
	})
	useServer(t, ts)

	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte(`{"name":"Ada","cuisines":["Thai"],"favoritePeople":"Sam, Jo"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "profile", "import", path); err != nil {
		t.Fatalf("profile import: %v", err)
	}
	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	var sent profile.UserProfile
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &sent); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if sent.Name != "Ada" || len(sent.Cuisines) != 1 || sent.FavoritePeople != "Sam, Jo" {
		t.Errorf("sent profile = %+v", sent)
	}
}

func TestReadProfile_Invalid(t *testing.T) {
	dir := t.TempDir()
	noName := filepath.Join(dir, "noname.json")
	os.WriteFile(noName, []byte(`{"cuisines":["Thai"]}`), 0o644)
	if _, err := readProfile(noName); err == nil {
		t.Error("expected error for a profile without a name")
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte(`{"name":`), 0o644)
	if _, err := readProfile(broken); err == nil || !strings.Contains(err.Error(), "invalid profile JSON") {
		t.Errorf("err = %v, want invalid JSON error", err)
	}
}

func TestKeysSet(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PUT /keys/spotify": `{"status":"stored"}`,
	})
	useServer(t, ts)

	if err := execute(t, "keys", "set", "spotify", "sk-123"); err != nil {
		t.Fatalf("keys set: %v", err)
	}
	if r := ts.requests[0]; r.Method != "PUT" || r.Body != `{"key":"sk-123"}` {
		t.Errorf("request = %+v", r)
	}
}

func TestPrintStats(t *testing.T) {
	old := noColor
	noColor = true
	defer func() { noColor = old }()

	var buf bytes.Buffer
	printStats(&buf, preferences.Stats{
		TotalLoved:      3,
		TypePreferences: map[string]int{"news": 1, "recipe": 2},
		RecentActivity: []preferences.Event{
			{ItemID: "a", ItemType: "recipe", Action: preferences.Love, Timestamp: time.Now(), Content: "Shakshuka"},
		},
	})

	out := buf.String()
	if !strings.Contains(out, "Loved: 3") || !strings.Contains(out, "Shakshuka") {
		t.Errorf("output = %q", out)
	}
	if strings.Index(out, "recipe") > strings.Index(out, "news") {
		t.Errorf("types not ordered by count:\n%s", out)
	}
}

func TestSortedTypes(t *testing.T) {
	got := sortedTypes(map[string]int{"news": 2, "music": 2, "food": 5})
	want := []string{"food", "music", "news"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sortedTypes = %v, want %v", got, want)
	}
}

func TestJournalAdd(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /journal": `{"id":"entry-1"}`,
	})
	useServer(t, ts)

	if err := execute(t, "journal", "add", "--title", "Sunday", "--tags", "family, ,lake", "Walked", "to", "the", "**lake**"); err != nil {
		t.Fatalf("journal add: %v", err)
	}
	journalAddCmd.Flags().Set("title", "")
	journalAddCmd.Flags().Set("tags", "")

	var body struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Tags   []string `json:"tags"`
		Source string   `json:"source"`
	}
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body.Title != "Sunday" || body.Body != "Walked to the **lake**" || body.Source != "cli" {
		t.Errorf("body = %+v", body)
	}
	if strings.Join(body.Tags, ",") != "family,lake" {
		t.Errorf("tags = %v", body.Tags)
	}
}

func TestJournalBody(t *testing.T) {
	if _, err := journalBody(nil, "", strings.NewReader("   ")); err == nil {
		t.Error("expected error for blank entry")
	}
	got, err := journalBody(nil, "", strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Errorf("journalBody = %q, %v", got, err)
	}
}

func TestJournalList(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /journal": `{"entries":[{"id":"0123456789","title":"","body_html":"<p>Quiet <em>morning</em></p>","created_at":"2026-01-01T00:00:00Z"}],"total":4}`,
	})

	resp, err := ts.client().get(ctx, "/journal?limit=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page journalPage
	if err := decodeJSON(resp, &page); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(page.Entries) != 1 || page.Total != 4 {
		t.Errorf("page = %+v", page)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	_, err := ts.client().get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"message":"quota exceeded","type":"quota_error"}}`))
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	err = decodeJSON(resp, &struct{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "server returned 502: quota exceeded" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestDecodeJSON_PlainError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := decodeJSON(resp, nil); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := pidFilePath(filepath.Join(t.TempDir(), "nested"))
	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile: %v", err)
	}
	pid, err := readPIDFile(path)
	if err != nil || pid != os.Getpid() {
		t.Errorf("readPIDFile = %d, %v; want %d", pid, err, os.Getpid())
	}
	removePIDFile(path)
	if _, err := readPIDFile(path); err == nil {
		t.Error("expected error after removal")
	}
}

func TestPrintHelpers_WriteToStderr(t *testing.T) {
	old, oldColor := stderr, noColor
	defer func() { stderr, noColor = old, oldColor }()
	var buf bytes.Buffer
	stderr = &buf
	noColor = true

	printSuccess("saved %d", 3)
	printStatus("Server", "running")
	if got := buf.String(); got != "✓ saved 3\n  Server: running\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestColorDisabled_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if !colorDisabled() {
		t.Error("NO_COLOR set but color enabled")
	}
}

func TestConfigShow_MarksEnvOverride(t *testing.T) {
	t.Setenv("MEMOJO_OPENAI_API_KEY", "sk-test")
	t.Setenv("MEMOJO_FEED_TTL", "15m")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	old := noColor
	noColor = true
	defer func() { noColor = old }()
	out := captureStdout(t)

	if err := execute(t, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out.String(), "feed.ttl = 15m  from $MEMOJO_FEED_TTL") {
		t.Errorf("output = %q", out.String())
	}
}
