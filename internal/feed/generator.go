package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/markdown"
	"github.com/memojo/memojo/internal/profile"
)

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts genai.Options) (string, error)
}

// ImageGenerator produces an image URL for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Generator builds the items of a section from the user's profile.
type Generator struct {
	text   TextGenerator
	images ImageGenerator
	clock  Clock
}

// NewGenerator creates a Generator. images may be nil, in which case items
// are returned without illustrations.
func NewGenerator(text TextGenerator, images ImageGenerator) *Generator {
	return &Generator{text: text, images: images, clock: realClock{}}
}

// WithClock returns a copy of g that stamps items using clock.
func (g *Generator) WithClock(clock Clock) *Generator {
	cp := *g
	cp.clock = clock
	return &cp
}

// Generate runs every text generation of section in order, then illustrates
// the items one at a time. A text failure aborts the section; an image
// failure only leaves that item without an image.
func (g *Generator) Generate(ctx context.Context, section Section, p profile.UserProfile, mood string) ([]ContentItem, error) {
	bps, ok := blueprints[section]
	if !ok {
		section, bps = Overview, blueprints[Overview]
	}

	now := g.clock.Now()
	in := input{p: p, mood: mood, timeOfDay: timeOfDay(now)}

	items := make([]ContentItem, 0, len(bps))
	for _, bp := range bps {
		raw, err := g.text.GenerateText(ctx, bp.text(in), bp.opts)
		if err != nil {
			return nil, fmt.Errorf("generating %s %s: %w", section, bp.slot, err)
		}
		item := ContentItem{
			ID:        uuid.NewString(),
			Slot:      bp.slot,
			Title:     bp.title,
			BodyHTML:  markdown.ToHTML(raw),
			IconTag:   bp.icon,
			Timestamp: now,
			Tags:      append([]string(nil), bp.tags...),
		}
		if bp.image != nil {
			item.imagePrompt = bp.image(in)
		}
		items = append(items, item)
	}

	g.illustrate(ctx, items)
	return items, nil
}

func (g *Generator) illustrate(ctx context.Context, items []ContentItem) {
	if g.images == nil {
		return
	}
	for i := range items {
		if items[i].imagePrompt == "" {
			continue
		}
		url, err := g.images.GenerateImage(ctx, items[i].imagePrompt)
		if err != nil {
			slog.Warn("image generation failed, keeping item without image", "slot", items[i].Slot, "error", err)
			continue
		}
		items[i].ImageURL = url
	}
}

// Feed couples a Generator with a Cache.
type Feed struct {
	gen   *Generator
	cache *Cache
}

func New(gen *Generator, cache *Cache) *Feed {
	return &Feed{gen: gen, cache: cache}
}

// Get returns the cached section or generates it.
func (f *Feed) Get(ctx context.Context, section Section, p profile.UserProfile, mood string) ([]ContentItem, error) {
	return f.cache.GetOrGenerate(ctx, section, f.generateFunc(section, p, mood))
}

// Refresh discards the cached section and generates it again.
func (f *Feed) Refresh(ctx context.Context, section Section, p profile.UserProfile, mood string) ([]ContentItem, error) {
	return f.cache.Refresh(ctx, section, f.generateFunc(section, p, mood))
}

func (f *Feed) generateFunc(section Section, p profile.UserProfile, mood string) GenerateFunc {
	return func(ctx context.Context) ([]ContentItem, error) {
		return f.gen.Generate(ctx, section, p, mood)
	}
}
