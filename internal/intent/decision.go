package intent

import (
	"fmt"
	"strings"

	"github.com/memojo/memojo/internal/content"
)

// Kind tags which Decision case is populated.
type Kind string

const (
	KindGenerate Kind = "generate"
	KindNavigate Kind = "navigate"
	KindConverse Kind = "converse"
)

// Sections are the dashboard panels a navigation request may target.
var Sections = []string{
	"overview", "news", "food", "people", "travel", "surprise",
	"today", "memories", "journal", "insights", "recap", "settings",
}

// targetSections maps each structured request to the panel that shows its result.
var targetSections = map[content.Kind]string{
	content.KindRecipe:   "food",
	content.KindPlaylist: "music",
	content.KindTravel:   "travel",
	content.KindJournal:  "journal",
	content.KindMemory:   "memories",
}

// TargetSection returns the panel that displays results of kind k.
func TargetSection(k content.Kind) string {
	return targetSections[k]
}

// GenerateContent asks for a structured generation of Kind about Topic.
type GenerateContent struct {
	Kind          content.Kind `json:"kind"`
	Topic         string       `json:"topic"`
	TargetSection string       `json:"target_section"`
}

// Navigate asks the caller to switch to TargetSection.
type Navigate struct {
	TargetSection       string `json:"target_section"`
	ConfirmationMessage string `json:"confirmation_message"`
}

// Converse carries a free-text reply to show inline.
type Converse struct {
	ReplyText string `json:"reply_text"`
}

// Decision is the router's output. Exactly one of Generate, Navigate or
// Converse is set, matching Kind; use the constructors to build one.
type Decision struct {
	Kind     Kind             `json:"kind"`
	Generate *GenerateContent `json:"generate,omitempty"`
	Navigate *Navigate        `json:"navigate,omitempty"`
	Converse *Converse        `json:"converse,omitempty"`
}

// NewGenerate builds a content request whose target section follows from k.
func NewGenerate(k content.Kind, topic string) Decision {
	return Decision{
		Kind:     KindGenerate,
		Generate: &GenerateContent{Kind: k, Topic: topic, TargetSection: TargetSection(k)},
	}
}

// NewNavigate builds a navigation to section with the reply to speak.
func NewNavigate(section, confirmation string) Decision {
	return Decision{
		Kind:     KindNavigate,
		Navigate: &Navigate{TargetSection: section, ConfirmationMessage: confirmation},
	}
}

// NewConverse wraps a conversational reply.
func NewConverse(reply string) Decision {
	return Decision{Kind: KindConverse, Converse: &Converse{ReplyText: reply}}
}

// Validate reports whether exactly the case named by Kind is populated.
func (d Decision) Validate() error {
	set := 0
	for _, ok := range []bool{d.Generate != nil, d.Navigate != nil, d.Converse != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("intent: decision has %d cases set, want 1", set)
	}
	switch {
	case d.Kind == KindGenerate && d.Generate != nil,
		d.Kind == KindNavigate && d.Navigate != nil,
		d.Kind == KindConverse && d.Converse != nil:
		return nil
	}
	return fmt.Errorf("intent: decision kind %q does not match populated case", d.Kind)
}

// Section returns the panel the decision points at, or "" for conversation.
func (d Decision) Section() string {
	switch d.Kind {
	case KindGenerate:
		return d.Generate.TargetSection
	case KindNavigate:
		return d.Navigate.TargetSection
	}
	return ""
}

// sectionAliases are words the navigation prompt lists for a panel.
var sectionAliases = map[string]string{
	"recipes": "food",
	"feed":    "overview",
	"home":    "overview",
}

// normalizeSection lowercases s and returns the known panel it names.
func normalizeSection(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := sectionAliases[s]; ok {
		return alias, true
	}
	for _, known := range Sections {
		if s == known {
			return s, true
		}
	}
	return "", false
}
