package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is a structured generation a voice request can ask for.
type Kind string

const (
	KindRecipe   Kind = "recipe"
	KindPlaylist Kind = "playlist"
	KindTravel   Kind = "travel"
	KindJournal  Kind = "journal"
	KindMemory   Kind = "memory"
)

// Kinds lists every Kind in routing priority order.
var Kinds = []Kind{KindRecipe, KindPlaylist, KindTravel, KindJournal, KindMemory}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Title returns the kind with its first letter upper-cased ("Recipe").
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Text is a string field the model sometimes fills with a number or bool.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*t = Text(x)
	case nil:
		*t = ""
	case float64, bool:
		*t = Text(strings.TrimSpace(string(data)))
	default:
		return fmt.Errorf("content: want string, got %s", data)
	}
	return nil
}

type Recipe struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	CookTime        Text     `json:"cookTime"`
	Servings        Text     `json:"servings"`
	Difficulty      string   `json:"difficulty"`
	Tips            []string `json:"tips"`
	NutritionalInfo Text     `json:"nutritionalInfo"`
}

type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Reason string `json:"reason"`
}

type Playlist struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Mood          string `json:"mood"`
	Songs         []Song `json:"songs"`
	TotalDuration Text   `json:"totalDuration"`
	SpotifyLink   string `json:"spotifyLink"`
}

type ItineraryDay struct {
	Day        Text     `json:"day"`
	Activities []string `json:"activities"`
	Food       []string `json:"food"`
	Tips       []string `json:"tips"`
}

type TravelPlan struct {
	Destination     string         `json:"destination"`
	Duration        Text           `json:"duration"`
	BestTimeToVisit string         `json:"bestTimeToVisit"`
	Itinerary       []ItineraryDay `json:"itinerary"`
	Budget          Text           `json:"budget"`
	PackingList     []string       `json:"packingList"`
	LocalTips       []string       `json:"localTips"`
}

type JournalPrompt struct {
	Prompt            string   `json:"prompt"`
	Theme             string   `json:"theme"`
	SuggestedDuration Text     `json:"suggestedDuration"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	Mood              string   `json:"mood"`
}

type MemoryReflection struct {
	Reflection       string   `json:"reflection"`
	PoeticElement    string   `json:"poeticElement"`
	Lessons          []string `json:"lessons"`
	Mood             string   `json:"mood"`
	SuggestedActions []string `json:"suggestedActions"`
}

// Insight is one card of the insights panel.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Icon    string `json:"icon"` // lightbulb, heart, trending-up or brain
}
