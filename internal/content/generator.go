// Package content asks the generation service for structured results
// (recipes, playlists, travel plans, journal prompts, memory reflections and
// insights) and decodes the JSON it returns.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

// ErrGenerationFailed is returned when the model's answer is not the JSON asked for.
var ErrGenerationFailed = errors.New("generation failed")

// TextGenerator is the slice of the generation service this package uses.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts genai.Options) (string, error)
}

// Generator builds prompts from the profile and decodes structured answers.
type Generator struct {
	gen TextGenerator
}

func NewGenerator(gen TextGenerator) *Generator {
	return &Generator{gen: gen}
}

// Generate dispatches a structured request. The result is one of *Recipe,
// *Playlist, *TravelPlan, *JournalPrompt or *MemoryReflection.
func (g *Generator) Generate(ctx context.Context, kind Kind, topic string, p profile.UserProfile) (any, error) {
	switch kind {
	case KindRecipe:
		return g.Recipe(ctx, topic, p)
	case KindPlaylist:
		return g.Playlist(ctx, topic, p)
	case KindTravel:
		return g.TravelPlan(ctx, topic, p)
	case KindJournal:
		return g.JournalPrompt(ctx, p)
	case KindMemory:
		return g.MemoryReflection(ctx, topic, p)
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

func (g *Generator) Recipe(ctx context.Context, name string, p profile.UserProfile) (*Recipe, error) {
	var out Recipe
	if err := g.structured(ctx, "recipe", recipePrompt(name, p), recipeOptions, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Generator) Playlist(ctx context.Context, mood string, p profile.UserProfile) (*Playlist, error) {
	var out Playlist
	if err := g.structured(ctx, "playlist", playlistPrompt(mood, p), playlistOptions, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Generator) TravelPlan(ctx context.Context, destination string, p profile.UserProfile) (*TravelPlan, error) {
	var out TravelPlan
	if err := g.structured(ctx, "travel plan", travelPrompt(destination, p), travelOptions, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JournalPrompt ignores any topic: the prompt is derived from the profile alone.
func (g *Generator) JournalPrompt(ctx context.Context, p profile.UserProfile) (*JournalPrompt, error) {
	var out JournalPrompt
	if err := g.structured(ctx, "journal prompt", journalPrompt(p), journalOptions, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Generator) MemoryReflection(ctx context.Context, memory string, p profile.UserProfile) (*MemoryReflection, error) {
	var out MemoryReflection
	if err := g.structured(ctx, "memory reflection", memoryPrompt(memory, p), memoryOptions, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Caption writes a short photo caption in the user's voice. The answer is
// plain text; surrounding quotes are dropped.
func (g *Generator) Caption(ctx context.Context, p profile.UserProfile) (string, error) {
	raw, err := g.gen.GenerateText(ctx, captionPrompt(p), captionOptions)
	if err != nil {
		return "", fmt.Errorf("generating caption: %w", err)
	}
	caption := strings.Trim(strings.TrimSpace(raw), "\"“”")
	if caption == "" {
		return "", fmt.Errorf("%w: empty caption", ErrGenerationFailed)
	}
	return caption, nil
}

// InsightContext is the activity summary the insights prompt is built from.
type InsightContext struct {
	JournalCount   int      `json:"journalCount"`
	RecentEntries  []string `json:"recentEntries,omitempty"`
	RecentCommands []string `json:"recentCommands,omitempty"`
	LovedCount     int      `json:"lovedCount"`
}

// Insights asks for four insight cards. A malformed answer is replaced by
// FallbackInsights; a service failure is returned.
func (g *Generator) Insights(ctx context.Context, p profile.UserProfile, ic InsightContext) ([]Insight, error) {
	raw, err := g.gen.GenerateText(ctx, insightsPrompt(p, ic), insightsOptions)
	if err != nil {
		return nil, fmt.Errorf("generating insights: %w", err)
	}
	var out []Insight
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &out); err != nil || len(out) == 0 {
		slog.Warn("insights answer was not a JSON array, using fallback", "error", err)
		return FallbackInsights(p), nil
	}
	return out, nil
}

// FallbackInsights are shown when the model's insights cannot be decoded.
func FallbackInsights(p profile.UserProfile) []Insight {
	return []Insight{
		{
			Type:  "growth",
			Title: "Your Journey Unfolds",
			Content: fmt.Sprintf("You've been exploring %s and embracing %s. This shows a beautiful commitment to personal growth.",
				first(p.BookGenres, "new ideas"), first(p.DesiredMoods, "positive energy")),
			Icon: "trending-up",
		},
		{
			Type:  "pattern",
			Title: "I Notice Your Interests",
			Content: fmt.Sprintf("Your love for %s and %s suggests you appreciate life's sensory pleasures. This is a wonderful way to stay present.",
				first(p.MusicGenres, "music"), first(p.Cuisines, "good food")),
			Icon: "heart",
		},
	}
}

func first(values []string, def string) string {
	if len(values) == 0 || values[0] == "" {
		return def
	}
	return values[0]
}

// structured runs one generation and decodes its JSON answer into out.
func (g *Generator) structured(ctx context.Context, label, prompt string, opts genai.Options, out any) error {
	raw, err := g.gen.GenerateText(ctx, prompt, opts)
	if err != nil {
		return fmt.Errorf("generating %s: %w", label, err)
	}
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), out); err != nil {
		slog.Warn("structured answer was not valid JSON", "kind", label, "error", err)
		return fmt.Errorf("failed to generate %s: %w", label, ErrGenerationFailed)
	}
	return nil
}

// ExtractJSON strips a markdown code fence and any prose around the outermost
// JSON object or array in s.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s
	}
	return s[start : end+1]
}
