package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

type mockGenerator struct {
	calls   int
	prompts []string
	opts    []genai.Options
	// replies are returned in order; the last one repeats.
	replies []string
	err     error
}

func (m *mockGenerator) GenerateText(_ context.Context, prompt string, opts genai.Options) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	i := min(m.calls-1, len(m.replies)-1)
	return m.replies[i], nil
}

var testProfile = profile.UserProfile{
	Name:         "Ada",
	BookGenres:   []string{"sci-fi"},
	MusicGenres:  []string{"jazz"},
	DesiredMoods: []string{"calm"},
}

func TestRoute_StructuredRequests(t *testing.T) {
	tests := []struct {
		transcript string
		kind       content.Kind
		topic      string
		section    string
	}{
		{"recipe for butter chicken", content.KindRecipe, "butter chicken", "food"},
		{"Give me a RECIPE OF pad thai.", content.KindRecipe, "pad thai", "food"},
		{"make a playlist for a rainy Sunday", content.KindPlaylist, "a rainy Sunday", "music"},
		{"Playlist About road trips!", content.KindPlaylist, "road trips", "music"},
		{"travel plan for Lisbon", content.KindTravel, "Lisbon", "travel"},
		{"I need a Travel Guide to Kyoto", content.KindTravel, "Kyoto", "travel"},
		{"journal prompt about gratitude", content.KindJournal, "gratitude", "journal"},
		{"JOURNAL ENTRY FOR my first job", content.KindJournal, "my first job", "journal"},
		{"a memory about grandma's garden", content.KindMemory, "grandma's garden", "memories"},
		{"Memory of the beach", content.KindMemory, "the beach", "memories"},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			gen := &mockGenerator{}
			d := NewRouter(gen).Route(context.Background(), tt.transcript, testProfile)

			if d.Kind != KindGenerate {
				t.Fatalf("Kind = %q, want generate", d.Kind)
			}
			if d.Generate.Kind != tt.kind {
				t.Errorf("content kind = %q, want %q", d.Generate.Kind, tt.kind)
			}
			if d.Generate.Topic != tt.topic {
				t.Errorf("topic = %q, want %q", d.Generate.Topic, tt.topic)
			}
			if d.Generate.TargetSection != tt.section {
				t.Errorf("section = %q, want %q", d.Generate.TargetSection, tt.section)
			}
			if gen.calls != 0 {
				t.Errorf("service called %d times for a structured request, want 0", gen.calls)
			}
			if err := d.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestMatchRequest_PriorityOrder(t *testing.T) {
	// Both a recipe and a playlist pattern match; recipe comes first.
	req, ok := MatchRequest("playlist for cooking and a recipe for soup")
	if !ok {
		t.Fatal("expected a match")
	}
	if req.Kind != content.KindRecipe || req.Topic != "soup" {
		t.Errorf("got %+v, want recipe/soup", req)
	}
}

func TestMatchRequest_EmptyTopic(t *testing.T) {
	for _, s := range []string{"recipe for ", "recipe for ...", "tell me a recipe"} {
		if req, ok := MatchRequest(s); ok {
			t.Errorf("MatchRequest(%q) = %+v, want no match", s, req)
		}
	}
}

func TestRoute_Navigation(t *testing.T) {
	gen := &mockGenerator{replies: []string{`{"shouldNavigate": true, "section": "journal", "response": "Sure!"}`}}
	d := NewRouter(gen).Route(context.Background(), "open my journal", testProfile)

	if d.Kind != KindNavigate {
		t.Fatalf("Kind = %q, want navigate", d.Kind)
	}
	if d.Navigate.TargetSection != "journal" || d.Navigate.ConfirmationMessage != "Sure!" {
		t.Errorf("Navigate = %+v", d.Navigate)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
	if gen.opts[0].Temperature != 0.3 || gen.opts[0].MaxTokens != 150 {
		t.Errorf("navigation options = %+v", gen.opts[0])
	}
	if !strings.Contains(gen.prompts[0], "open my journal") {
		t.Errorf("navigation prompt missing transcript: %q", gen.prompts[0])
	}
}

func TestRoute_NavigationCodeFenceAndCase(t *testing.T) {
	reply := "```json\n{\"shouldNavigate\": true, \"section\": \" Insights \", \"response\": \"Here you go.\"}\n```"
	gen := &mockGenerator{replies: []string{reply}}
	d := NewRouter(gen).Route(context.Background(), "show me insights", testProfile)

	if d.Kind != KindNavigate || d.Navigate.TargetSection != "insights" {
		t.Fatalf("decision = %+v, want navigate to insights", d)
	}
}

func TestRoute_NavigationAliases(t *testing.T) {
	for alias, want := range map[string]string{"Recipes": "food", "home": "overview", "feed": "overview"} {
		gen := &mockGenerator{replies: []string{`{"shouldNavigate": true, "section": "` + alias + `", "response": "Ok"}`}}
		d := NewRouter(gen).Route(context.Background(), "go to "+alias, testProfile)
		if d.Kind != KindNavigate || d.Navigate.TargetSection != want {
			t.Errorf("section %q: decision = %+v, want navigate to %s", alias, d, want)
		}
	}
}

func TestRoute_FallsThroughToConversation(t *testing.T) {
	tests := []struct {
		name       string
		navigation string
	}{
		{"malformed json", "I think you want the journal"},
		{"no intent", `{"shouldNavigate": false, "section": "", "response": ""}`},
		{"unknown section", `{"shouldNavigate": true, "section": "casino", "response": "Off we go"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{replies: []string{tt.navigation, "  That sounds lovely, Ada.  "}}
			d := NewRouter(gen).Route(context.Background(), "I had a nice day", testProfile)

			if d.Kind != KindConverse {
				t.Fatalf("Kind = %q, want converse", d.Kind)
			}
			if d.Converse.ReplyText != "That sounds lovely, Ada." {
				t.Errorf("reply = %q", d.Converse.ReplyText)
			}
			if gen.calls != 2 {
				t.Errorf("calls = %d, want 2", gen.calls)
			}
			if gen.opts[1].Temperature != 0.8 || gen.opts[1].MaxTokens != 300 {
				t.Errorf("conversation options = %+v", gen.opts[1])
			}
			for _, want := range []string{"sci-fi", "jazz", "calm"} {
				if !strings.Contains(gen.prompts[1], want) {
					t.Errorf("conversation prompt missing %q", want)
				}
			}
		})
	}
}

func TestRoute_ServiceFailureApologises(t *testing.T) {
	gen := &mockGenerator{err: errors.New("connection refused")}
	d := NewRouter(gen).Route(context.Background(), "how are you", testProfile)

	if d.Kind != KindConverse || d.Converse.ReplyText != ApologyReply {
		t.Fatalf("decision = %+v, want apology", d)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

type failSecond struct{ mockGenerator }

func (f *failSecond) GenerateText(ctx context.Context, prompt string, opts genai.Options) (string, error) {
	if f.calls == 1 {
		f.calls++
		return "", &genai.StatusError{StatusCode: 429, Body: "quota"}
	}
	return f.mockGenerator.GenerateText(ctx, prompt, opts)
}

func TestRoute_ConversationFailureApologises(t *testing.T) {
	gen := &failSecond{mockGenerator{replies: []string{`{"shouldNavigate": false}`}}}
	d := NewRouter(gen).Route(context.Background(), "tell me something", testProfile)

	if d.Kind != KindConverse || d.Converse.ReplyText != ApologyReply {
		t.Fatalf("decision = %+v, want apology", d)
	}
}

func TestRoute_BlankTranscript(t *testing.T) {
	gen := &mockGenerator{}
	d := NewRouter(gen).Route(context.Background(), "   ", testProfile)

	if d.Kind != KindConverse || d.Converse.ReplyText != emptyReply {
		t.Fatalf("decision = %+v", d)
	}
	if gen.calls != 0 {
		t.Errorf("calls = %d, want 0", gen.calls)
	}
}

type panicGenerator struct{}

func (panicGenerator) GenerateText(context.Context, string, genai.Options) (string, error) {
	panic("boom")
}

func TestRoute_RecoversFromPanic(t *testing.T) {
	d := NewRouter(panicGenerator{}).Route(context.Background(), "hello", testProfile)
	if d.Kind != KindConverse || d.Converse.ReplyText != ApologyReply {
		t.Fatalf("decision = %+v, want apology", d)
	}
}

func TestDecision_Validate(t *testing.T) {
	valid := []Decision{
		NewGenerate(content.KindTravel, "Rome"),
		NewNavigate("news", "ok"),
		NewConverse("hi"),
	}
	for _, d := range valid {
		if err := d.Validate(); err != nil {
			t.Errorf("Validate(%+v): %v", d, err)
		}
	}

	invalid := []Decision{
		{Kind: KindConverse},
		{Kind: KindNavigate, Converse: &Converse{}},
		{Kind: KindConverse, Converse: &Converse{}, Navigate: &Navigate{}},
	}
	for _, d := range invalid {
		if err := d.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", d)
		}
	}
}

func TestDecision_Section(t *testing.T) {
	if s := NewGenerate(content.KindMemory, "x").Section(); s != "memories" {
		t.Errorf("generate section = %q", s)
	}
	if s := NewNavigate("recap", "").Section(); s != "recap" {
		t.Errorf("navigate section = %q", s)
	}
	if s := NewConverse("hi").Section(); s != "" {
		t.Errorf("converse section = %q", s)
	}
}
