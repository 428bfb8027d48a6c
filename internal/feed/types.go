// Package feed generates the dashboard's section content and keeps it in a
// one-hour in-memory cache.
package feed

import (
	"strings"
	"time"
)

// Section names a feed tab.
type Section string

const (
	Overview Section = "overview"
	News     Section = "news"
	Music    Section = "music"
	Food     Section = "food"
	Wellness Section = "wellness"
	Video    Section = "video"
	People   Section = "people"
	Travel   Section = "travel"
	Surprise Section = "surprise"
	Podcasts Section = "podcasts"
)

// Sections lists every section with a generator.
var Sections = []Section{Overview, News, Music, Food, Wellness, Video, People, Travel, Surprise, Podcasts}

// ParseSection maps s onto a known section. Anything unrecognised is Overview.
func ParseSection(s string) Section {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := blueprints[sec]; ok {
		return sec
	}
	return Overview
}

// ContentItem is one card of a section. Items are not modified after creation.
type ContentItem struct {
	ID        string    `json:"id"`
	Slot      string    `json:"slot"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	IconTag   string    `json:"icon"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags"`
	ImageURL  string    `json:"image_url,omitempty"`

	imagePrompt string
}

// CachedSection is a generated section and the time it was produced.
type CachedSection struct {
	Items       []ContentItem `json:"items"`
	GeneratedAt time.Time     `json:"generated_at"`
}
