package intent

import (
	"fmt"
	"strings"

	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

var navigationOptions = genai.Options{
	Temperature:   0.3,
	MaxTokens:     150,
	SystemMessage: "You are a navigation assistant. Always respond with valid JSON.",
}

var conversationOptions = genai.Options{
	Temperature:   0.8,
	MaxTokens:     300,
	SystemMessage: "You are a caring, empathetic AI companion who knows the user well and responds with warmth and understanding.",
}

const navigationTemplate = `Analyze this user request: %q

Available sections: %s

Determine if the user wants to navigate to a specific section. Look for keywords like:
- "show me", "go to", "navigate to", "take me to", "I want to see"
- the section names above, "recipes" (food), "feed" or "home" (overview)

Respond with JSON: {"shouldNavigate": boolean, "section": "section_name", "response": "friendly confirmation message"}

If no clear navigation intent, return: {"shouldNavigate": false, "section": "", "response": ""}`

// BuildNavigationPrompt asks the model to classify transcript against Sections.
func BuildNavigationPrompt(transcript string) string {
	return fmt.Sprintf(navigationTemplate, transcript, strings.Join(Sections, ", "))
}

// BuildConversationPrompt embeds a slice of the profile into a free-text reply request.
func BuildConversationPrompt(transcript string, p profile.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user said: %q.\n", transcript)
	if p.Name != "" {
		fmt.Fprintf(&sb, "Their name is %s.\n", p.Name)
	}
	fmt.Fprintf(&sb, "Context about the user: They enjoy %s books, %s music, and their desired mood is %s.\n",
		profile.List(p.BookGenres), profile.List(p.MusicGenres), profile.List(p.DesiredMoods))
	sb.WriteString("Respond in a warm, understanding way that shows you know them personally.")
	return sb.String()
}
