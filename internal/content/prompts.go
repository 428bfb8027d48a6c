package content

import (
	"encoding/json"
	"fmt"

	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

var (
	recipeOptions = genai.Options{
		Temperature:   0.7,
		MaxTokens:     800,
		SystemMessage: "You are a professional chef who creates detailed, easy-to-follow recipes that match the user's preferences and dietary needs.",
	}
	playlistOptions = genai.Options{
		Temperature:   0.8,
		MaxTokens:     600,
		SystemMessage: "You are a music curator who creates perfect playlists that match the user's mood and musical taste.",
	}
	travelOptions = genai.Options{
		Temperature:   0.7,
		MaxTokens:     1000,
		SystemMessage: "You are a travel expert who creates detailed, personalized travel plans that match the user's interests and preferences.",
	}
	journalOptions = genai.Options{
		Temperature:   0.8,
		MaxTokens:     400,
		SystemMessage: "You are a thoughtful writing coach who creates meaningful journal prompts that help users explore their thoughts and feelings.",
	}
	memoryOptions = genai.Options{
		Temperature:   0.9,
		MaxTokens:     500,
		SystemMessage: "You are a poetic writer who creates beautiful reflections that help users cherish and learn from their memories.",
	}
	captionOptions = genai.Options{
		Temperature:   0.8,
		MaxTokens:     100,
		SystemMessage: "You are a poetic writer who creates beautiful, meaningful captions that resonate deeply with the person's soul and interests.",
	}
	insightsOptions = genai.Options{
		Temperature:   0.7,
		MaxTokens:     600,
		SystemMessage: "You are an insightful AI coach who provides thoughtful, encouraging analysis of personal patterns and gentle suggestions for growth. Return valid JSON only.",
	}
)

func orVarious(s string) string {
	if s == "" {
		return "various"
	}
	return s
}

func recipePrompt(name string, p profile.UserProfile) string {
	return fmt.Sprintf(`Generate a detailed recipe for %s.
Consider these user preferences:
- Cuisines they enjoy: %s
- Food preferences: %s
- Cooking level: %s
- Dietary restrictions: %s

Format the response as JSON with these fields:
{
  "name": "Recipe name",
  "description": "Brief description",
  "ingredients": ["list", "of", "ingredients"],
  "instructions": ["step", "by", "step", "instructions"],
  "cookTime": "estimated time",
  "servings": "number of servings",
  "difficulty": "Easy/Medium/Hard",
  "tips": ["cooking", "tips"],
  "nutritionalInfo": "brief nutritional info"
}`, name, profile.List(p.Cuisines), profile.List(p.FoodPreferences), orVarious(p.CookingLevel), orNone(p.DietaryRestrictions))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func playlistPrompt(mood string, p profile.UserProfile) string {
	return fmt.Sprintf(`Create a personalized playlist for someone who enjoys %s music.
Current mood: %s
Desired moods: %s

Format the response as JSON with these fields:
{
  "title": "Playlist name",
  "description": "Brief description",
  "mood": "target mood",
  "songs": [
    {
      "title": "Song name",
      "artist": "Artist name",
      "reason": "Why this song fits the mood"
    }
  ],
  "totalDuration": "estimated duration",
  "spotifyLink": "spotify playlist link if available"
}`, profile.List(p.MusicGenres), mood, profile.List(p.DesiredMoods))
}

func travelPrompt(destination string, p profile.UserProfile) string {
	style := p.TravelStyle
	if style == "" {
		style = profile.List(p.TravelStyles)
	}
	return fmt.Sprintf(`Create a personalized travel plan for %s for someone who:
- Travel style: %s
- Interests: %s
- Food preferences: %s
- Cuisines they enjoy: %s

Format the response as JSON with these fields:
{
  "destination": "Place name",
  "duration": "recommended duration",
  "bestTimeToVisit": "when to go",
  "itinerary": [
    {
      "day": "Day number",
      "activities": ["list", "of", "activities"],
      "food": ["recommended", "places", "to", "eat"],
      "tips": ["travel", "tips", "for", "the", "day"]
    }
  ],
  "budget": "estimated budget",
  "packingList": ["essential", "items", "to", "pack"],
  "localTips": ["useful", "local", "knowledge"]
}`, destination, style, profile.List(p.TechInterests), profile.List(p.FoodPreferences), profile.List(p.Cuisines))
}

func journalPrompt(p profile.UserProfile) string {
	return fmt.Sprintf(`Create a thoughtful journal prompt for someone who:
- Enjoys %s books
- Is interested in %s
- Desires these moods: %s
- Has these wellness areas: %s

Format the response as JSON with these fields:
{
  "prompt": "The journal prompt",
  "theme": "The underlying theme",
  "suggestedDuration": "How long to spend on this",
  "followUpQuestions": ["related", "questions", "to", "explore"],
  "mood": "Expected emotional impact"
}`, profile.List(p.BookGenres), profile.List(p.TechInterests), profile.List(p.DesiredMoods), profile.List(p.WellnessAreas))
}

func captionPrompt(p profile.UserProfile) string {
	return fmt.Sprintf("Create a beautiful, meaningful photo caption for someone who enjoys %s and %s. "+
		"Make it reflective of their personality and interests. "+
		"The caption should be poetic, thoughtful, and capture the essence of a precious moment.",
		profile.List(p.BookGenres), profile.List(p.MusicGenres))
}

func memoryPrompt(memory string, p profile.UserProfile) string {
	return fmt.Sprintf(`Create a beautiful reflection about this memory: %q
For someone who:
- Enjoys %s books
- Loves %s music
- Values %s

Format the response as JSON with these fields:
{
  "reflection": "The main reflection",
  "poeticElement": "A poetic interpretation",
  "lessons": ["key", "insights", "from", "the", "memory"],
  "mood": "The emotional tone",
  "suggestedActions": ["ways", "to", "honor", "this", "memory"]
}`, memory, profile.List(p.BookGenres), profile.List(p.MusicGenres), profile.List(p.WellnessAreas))
}

func insightsPrompt(p profile.UserProfile, ic InsightContext) string {
	data, _ := json.Marshal(struct {
		User profile.UserProfile `json:"user"`
		InsightContext
	}{p, ic})
	return fmt.Sprintf(`Based on this user data: %s,
generate 4 personalized insights about their patterns, growth, and suggestions.
Format as JSON array with objects containing: type, title, content, icon (lightbulb, heart, trending-up, or brain).
Focus on their journey, patterns you notice, and gentle suggestions for growth.`, data)
}
