package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

// ApologyReply is the Converse text used when the generation service fails.
const ApologyReply = "Sorry, I couldn't process your voice message. Please try again."

// emptyReply answers a blank transcript without calling the service.
const emptyReply = "I didn't catch that. Could you say it again?"

// TextGenerator is the slice of the generation service the router uses.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts genai.Options) (string, error)
}

type requestPattern struct {
	kind content.Kind
	re   *regexp.Regexp
}

// requestPatterns are tried in order; the first match wins.
var requestPatterns = []requestPattern{
	{content.KindRecipe, regexp.MustCompile(`(?i)recipe (?:for|of) (.+)`)},
	{content.KindPlaylist, regexp.MustCompile(`(?i)playlist (?:for|about) (.+)`)},
	{content.KindTravel, regexp.MustCompile(`(?i)travel (?:plan|guide) (?:for|to) (.+)`)},
	{content.KindJournal, regexp.MustCompile(`(?i)journal (?:prompt|entry) (?:about|for) (.+)`)},
	{content.KindMemory, regexp.MustCompile(`(?i)memory (?:about|of) (.+)`)},
}

// Router turns a transcript into a Decision. It performs no side effects
// beyond its calls to the generation service.
type Router struct {
	gen TextGenerator
}

// NewRouter creates a Router backed by gen.
func NewRouter(gen TextGenerator) *Router {
	return &Router{gen: gen}
}

// Route classifies transcript. Structured requests are matched locally;
// otherwise the service is asked for a navigation intent, then for a
// conversational reply. Route never returns an error: service failures
// become an apology Converse decision.
func (r *Router) Route(ctx context.Context, transcript string, p profile.UserProfile) (d Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("intent routing panicked", "panic", rec)
			d = NewConverse(ApologyReply)
		}
	}()

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return NewConverse(emptyReply)
	}

	if req, ok := MatchRequest(transcript); ok {
		return NewGenerate(req.Kind, req.Topic)
	}

	nav, err := r.navigationIntent(ctx, transcript)
	if err != nil {
		slog.Warn("navigation intent call failed", "error", err)
		return NewConverse(ApologyReply)
	}
	if nav != nil {
		return *nav
	}

	reply, err := r.gen.GenerateText(ctx, BuildConversationPrompt(transcript, p), conversationOptions)
	if err != nil {
		slog.Warn("conversation reply failed", "error", err)
		return NewConverse(ApologyReply)
	}
	return NewConverse(strings.TrimSpace(reply))
}

// MatchRequest applies the structured request patterns to transcript.
func MatchRequest(transcript string) (GenerateContent, bool) {
	for _, p := range requestPatterns {
		m := p.re.FindStringSubmatch(transcript)
		if m == nil {
			continue
		}
		topic := cleanTopic(m[1])
		if topic == "" {
			continue
		}
		return GenerateContent{Kind: p.kind, Topic: topic, TargetSection: TargetSection(p.kind)}, true
	}
	return GenerateContent{}, false
}

// cleanTopic trims whitespace and the sentence punctuation transcription adds.
func cleanTopic(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".!?,;"))
}

type navigationResult struct {
	ShouldNavigate bool   `json:"shouldNavigate"`
	Section        string `json:"section"`
	Response       string `json:"response"`
}

// navigationIntent returns a Navigate decision, nil when the model found no
// usable intent, or an error when the service call itself failed.
func (r *Router) navigationIntent(ctx context.Context, transcript string) (*Decision, error) {
	raw, err := r.gen.GenerateText(ctx, BuildNavigationPrompt(transcript), navigationOptions)
	if err != nil {
		return nil, err
	}

	var res navigationResult
	if err := json.Unmarshal([]byte(content.ExtractJSON(raw)), &res); err != nil {
		slog.Warn("failed to unmarshal navigation intent", "error", err, "response", raw)
		return nil, nil
	}
	if !res.ShouldNavigate {
		return nil, nil
	}
	section, ok := normalizeSection(res.Section)
	if !ok {
		slog.Warn("navigation intent named unknown section", "section", res.Section)
		return nil, nil
	}
	d := NewNavigate(section, strings.TrimSpace(res.Response))
	return &d, nil
}
