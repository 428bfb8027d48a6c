package feed

import (
	"fmt"
	"time"

	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/profile"
)

// input is what every section prompt is built from.
type input struct {
	p         profile.UserProfile
	mood      string
	timeOfDay string
}

// currentMood prefers the mood chosen in the UI over the profile's desired moods.
func (in input) currentMood() string {
	if in.mood != "" {
		return in.mood
	}
	return profile.List(in.p.DesiredMoods)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func firstOr(values []string, def string) string {
	if len(values) == 0 || values[0] == "" {
		return def
	}
	return values[0]
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// blueprint describes one card of a section: how to prompt for its body and,
// optionally, its illustration.
type blueprint struct {
	slot  string
	title string
	icon  string
	tags  []string
	opts  genai.Options
	text  func(in input) string
	image func(in input) string
}

var blueprints = map[Section][]blueprint{
	News: {
		{
			slot: "news", title: "Personalized News", icon: "newspaper", tags: []string{"news", "updates"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 1000, SystemMessage: "You are a news curator who provides detailed, interest-specific updates with source links and clear formatting. Always include real, working URLs for sources. Maintain strict formatting with clear section breaks."},
			text: func(in input) string {
				return fmt.Sprintf(`Create a personalized news summary for someone interested in:
- Specific Interests: %s
- Tech Interests: %s
- Industries: %s

For each interest find the most recent and relevant news, link the source article as [Title](URL),
give a 2-3 sentence summary, explain why it matters and list key facts.

Format each news item exactly as follows:

## [Interest Category]

### [Article Title]
[Article Title](https://source-url.com)

**Summary:** [2-3 sentence summary]

**Why It Matters:** [Explanation of relevance]

**Key Facts:**
• [Fact 1]
• [Fact 2]
• [Fact 3]

---

Keep the tone professional but engaging.`, profile.List(in.p.Interests), profile.List(in.p.TechInterests), profile.List(in.p.Industries))
			},
			image: func(in input) string {
				return fmt.Sprintf("A dynamic news scene representing %s, with modern news elements and engaging composition", firstOr(in.p.Interests, "current events"))
			},
		},
		{
			slot: "industry", title: "Industry Insights", icon: "briefcase", tags: []string{"industry", "career"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 600, SystemMessage: "You are an industry analyst who provides detailed, actionable insights with source links and clear formatting."},
			text: func(in input) string {
				return fmt.Sprintf(`Create industry-specific news for someone interested in:
- Industries: %s
- Professional Interests: %s
- Career Goals: %s

For each industry give the most recent developments with a source link, a concise summary,
the impact on their career goals and relevant data. Focus on actionable insights and career relevance.`,
					profile.List(in.p.Industries), profile.List(in.p.ProfessionalInterests), profile.List(in.p.CareerGoals))
			},
			image: func(in input) string {
				return fmt.Sprintf("A professional industry scene representing %s, with modern office elements and professional atmosphere", firstOr(in.p.Industries, "business"))
			},
		},
	},
	Music: {
		{
			slot: "music", title: "Music Recommendations", icon: "music", tags: []string{"music", "playlist"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 400, SystemMessage: "You are a music expert who creates deeply personalized playlists based on specific interests and moods."},
			text: func(in input) string {
				return fmt.Sprintf(`Create music recommendations for someone who enjoys:
- Music Genres: %s
- Specific Interests: %s
- Current Mood: %s

For each interest suggest songs that match both the interest and current mood, include artists
that align with their interests and explain why each recommendation fits their taste.
Format with clear sections for each interest area.`, profile.List(in.p.MusicGenres), profile.List(in.p.Interests), in.currentMood())
			},
			image: func(in input) string {
				return fmt.Sprintf("A vibrant music scene representing %s, with dynamic elements and mood-appropriate atmosphere", firstOr(in.p.MusicGenres, "music"))
			},
		},
	},
	Food: {
		{
			slot: "recipe", title: "Today's Recipe", icon: "utensils", tags: []string{"food", "recipe"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 400, SystemMessage: "You are a culinary expert who creates personalized recipes."},
			text: func(in input) string {
				return fmt.Sprintf(`Create a recipe for someone who:
- Cuisines: %s
- Food Preferences: %s
- Dietary Restrictions: %s
- Cooking Level: %s

Include a complete recipe with ingredients and step-by-step instructions.`,
					profile.List(in.p.Cuisines), profile.List(in.p.FoodPreferences), or(in.p.DietaryRestrictions, "none"), or(in.p.CookingLevel, "intermediate"))
			},
		},
		{
			slot: "restaurants", title: "Restaurant Recommendations", icon: "map-pin", tags: []string{"food", "dining"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 300, SystemMessage: "You are a food critic who makes perfect restaurant recommendations."},
			text: func(in input) string {
				return fmt.Sprintf(`Suggest restaurants for someone who:
- Cuisines: %s
- Food Preferences: %s
- Dietary Restrictions: %s
- Location: %s

Recommend 3 restaurants with brief descriptions of their specialties.`,
					profile.List(in.p.Cuisines), profile.List(in.p.FoodPreferences), or(in.p.DietaryRestrictions, "none"), or(in.p.Location, "anywhere"))
			},
		},
	},
	Wellness: {
		{
			slot: "wellness", title: "Wellness Tips", icon: "heart", tags: []string{"wellness", "health"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 300, SystemMessage: "You are a wellness coach who provides practical, personalized advice."},
			text: func(in input) string {
				return fmt.Sprintf(`Create wellness advice for someone who:
- Wellness Areas: %s
- Exercise Habits: %s
- Recharges by: %s

Provide 3 practical wellness tips tailored to their needs.`,
					profile.List(in.p.WellnessAreas), or(in.p.ExerciseHabits, "moderate"), or(in.p.RechargeActivities, "resting"))
			},
		},
		{
			slot: "mindfulness", title: "Mindfulness Moment", icon: "sparkles", tags: []string{"wellness", "mindfulness"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 200, SystemMessage: "You are a mindfulness guide who creates calming, effective exercises."},
			text: func(in input) string {
				return fmt.Sprintf(`Create mindfulness guidance for someone who:
- Stress Relievers: %s
- Wellness Goals: %s
- Current Mood: %s

Provide a short meditation or mindfulness exercise.`,
					profile.List(in.p.StressRelievers), profile.List(in.p.WellnessAreas), in.currentMood())
			},
		},
	},
	Video: {
		{
			slot: "videos", title: "Video Recommendations", icon: "video", tags: []string{"entertainment", "video"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are a video curator who makes perfect content recommendations."},
			text: func(in input) string {
				return fmt.Sprintf(`Recommend videos for someone who enjoys:
- Video Types: %s
- Interests: %s
- Learning Style: %s

Suggest 3 videos (movies, shows, or educational content) with brief descriptions and why they would enjoy them.`,
					profile.List(in.p.MovieGenres), profile.List(in.p.Interests), or(in.p.LearningStyle, "visual"))
			},
			image: func(in input) string {
				return fmt.Sprintf("A cinematic scene representing %s, with warm lighting and engaging composition", firstOr(in.p.MovieGenres, "entertainment"))
			},
		},
		{
			slot: "streaming", title: "Streaming Suggestions", icon: "video", tags: []string{"streaming", "entertainment"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are a streaming expert who finds perfect content for any mood."},
			text: func(in input) string {
				return fmt.Sprintf(`Suggest streaming content for someone who:
- Streaming Services: %s
- Favorite Shows: %s
- Mood: %s

Recommend 3 shows or movies from their streaming services that match their current mood.`,
					or(in.p.Platforms, "various"), or(in.p.FavoriteShows, "various"), in.currentMood())
			},
			image: func(in input) string {
				return fmt.Sprintf("A cozy streaming setup with %s interface, warm lighting, and comfortable seating", or(in.p.Platforms, "popular streaming service"))
			},
		},
	},
	People: {
		{
			slot: "social", title: "Social Connection Tips", icon: "users", tags: []string{"social", "connections"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are a social connection expert who helps people build meaningful relationships."},
			text: func(in input) string {
				return fmt.Sprintf(`Create social connection suggestions for someone who:
- Social Style: %s
- Relationship Status: %s
- Favorite People: %s

Provide 3 specific ways to connect with others based on their preferences.`,
					profile.List(in.p.SocialStyles), or(in.p.RelationshipStatus, "single"), or(in.p.FavoritePeople, "friends and family"))
			},
			image: func(input) string {
				return "A warm, inviting social gathering scene with diverse people connecting and sharing experiences"
			},
		},
		{
			slot: "networking", title: "Networking Opportunities", icon: "user-circle", tags: []string{"professional", "networking"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 300, SystemMessage: "You are a networking expert who connects professionals with relevant opportunities."},
			text: func(in input) string {
				return fmt.Sprintf(`Suggest networking opportunities for someone interested in:
- Industries: %s
- Professional Interests: %s
- Career Goals: %s

Recommend 3 specific networking events or opportunities that align with their career path.`,
					profile.List(in.p.Industries), profile.List(in.p.ProfessionalInterests), profile.List(in.p.CareerGoals))
			},
			image: func(input) string {
				return "A professional networking event with people engaging in meaningful conversations, modern office setting"
			},
		},
	},
	Travel: {
		{
			slot: "travel", title: "Travel Inspiration", icon: "plane", tags: []string{"travel", "adventure"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are a travel expert who creates inspiring travel recommendations."},
			text: func(in input) string {
				return fmt.Sprintf(`Create travel inspiration for someone who:
- Travel Style: %s
- Dream Destinations: %s
- Interests: %s

Suggest 3 travel experiences or destinations that match their style and interests.`,
					travelStyle(in.p), or(in.p.DreamDestinations, "various"), profile.List(in.p.Interests))
			},
			image: func(in input) string {
				return fmt.Sprintf("A breathtaking travel destination scene with %s elements, vibrant colors, and inspiring composition", travelStyle(in.p))
			},
		},
		{
			slot: "local", title: "Local Exploration", icon: "map-pin", tags: []string{"local", "exploration"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are a local exploration expert who finds hidden gems in any area."},
			text: func(in input) string {
				return fmt.Sprintf(`Suggest local exploration ideas for someone who:
- Location: %s
- Hobbies: %s
- Ideal Weekend: %s

Recommend 3 local activities or places to explore based on their preferences.`,
					or(in.p.Location, "their area"), or(in.p.Hobbies, "various"), or(in.p.IdealWeekend, "relaxed"))
			},
			image: func(in input) string {
				return fmt.Sprintf("A charming local scene with %s, warm lighting, and inviting atmosphere", or(in.p.Hobbies, "interesting local attractions"))
			},
		},
	},
	Surprise: {
		{
			slot: "discovery", title: "Surprise Discovery", icon: "gift", tags: []string{"surprise", "discovery"},
			opts: genai.Options{Temperature: 0.9, MaxTokens: 300, SystemMessage: "You are a discovery expert who creates delightful surprises."},
			text: func(in input) string {
				return fmt.Sprintf(`Create a surprise discovery for someone who:
- Interests: %s
- Personality: %s
- Current Mood: %s

Suggest something unexpected but delightful that they might enjoy.`,
					profile.List(in.p.Interests), or(in.p.PersonalityType, "curious"), in.currentMood())
			},
			image: func(in input) string {
				return fmt.Sprintf("A magical, surprising scene with elements of %s, sparkles, and unexpected delights", firstOr(in.p.Interests, "wonder"))
			},
		},
		{
			slot: "challenge", title: "Fun Challenge", icon: "sparkles", tags: []string{"challenge", "fun"},
			opts: genai.Options{Temperature: 0.9, MaxTokens: 300, SystemMessage: "You are a challenge creator who makes engaging, fun activities."},
			text: func(in input) string {
				return fmt.Sprintf(`Create a fun challenge for someone who:
- Adventure Level: %d out of 10
- Interests: %s
- Creative Outlets: %s

Suggest a unique, engaging challenge that matches their interests and energy level.`,
					adventure(in.p), profile.List(in.p.Interests), profile.List(in.p.CreativeOutlets))
			},
			image: func(in input) string {
				return fmt.Sprintf("An exciting challenge scene with dynamic energy, %s, and motivational atmosphere", firstOr(in.p.Interests, "engaging elements"))
			},
		},
	},
	Podcasts: {
		{
			slot: "podcasts", title: "Personalized Podcasts & Channels", icon: "headphones", tags: []string{"podcasts", "youtube", "content"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 1000, SystemMessage: "You are a podcast and YouTube content curator who provides personalized recommendations with direct links to episodes. Focus on high-quality, relevant content that matches the user's specific interests."},
			text: func(in input) string {
				return fmt.Sprintf(`Create personalized podcast recommendations for someone interested in:
- Specific Interests: %s
- Tech Interests: %s
- Industries: %s
- Professional Interests: %s

For each interest area recommend 2-3 podcasts or YouTube channels with a link to the latest episode.
Format each recommendation exactly as follows:

## [Interest Category] Podcasts & Channels

### [Podcast/Channel Name]
[Latest Episode Title](https://youtube.com/...)

**Description:** [2-3 sentence description]

**Why You'll Like It:** [Personalized explanation]

**Key Topics:**
• [Topic 1]
• [Topic 2]
• [Topic 3]

---`, profile.List(in.p.Interests), profile.List(in.p.TechInterests), profile.List(in.p.Industries), profile.List(in.p.ProfessionalInterests))
			},
			image: func(in input) string {
				return fmt.Sprintf("A modern podcast studio scene representing %s, with professional recording equipment and engaging atmosphere", firstOr(in.p.Interests, "content creation"))
			},
		},
		{
			slot: "learning", title: "Learning Resources", icon: "book-open", tags: []string{"learning", "education", "youtube"},
			opts: genai.Options{Temperature: 0.7, MaxTokens: 800, SystemMessage: "You are an educational content curator who provides personalized learning recommendations with direct links to episodes. Focus on high-quality, educational content that matches the user's specific interests and learning goals."},
			text: func(in input) string {
				return fmt.Sprintf(`Create personalized learning content recommendations for someone interested in:
- Specific Interests: %s
- Tech Interests: %s
- Professional Interests: %s

For each interest area recommend 2-3 educational YouTube channels or podcasts.
Format each recommendation exactly as follows:

## [Interest Category] Learning Resources

### [Channel/Podcast Name]
[Latest Episode Title](https://youtube.com/...)

**Description:** [2-3 sentence description]

**Learning Value:** [How it helps with their goals]

**Key Takeaways:**
• [Takeaway 1]
• [Takeaway 2]
• [Takeaway 3]

---`, profile.List(in.p.Interests), profile.List(in.p.TechInterests), profile.List(in.p.ProfessionalInterests))
			},
			image: func(in input) string {
				return fmt.Sprintf("An educational content scene representing %s, with modern learning tools and engaging atmosphere", firstOr(in.p.Interests, "learning"))
			},
		},
	},
	Overview: {
		{
			slot: "greeting", title: "Your Daily Greeting", icon: "sun", tags: []string{"personalized", "daily"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 200, SystemMessage: "You are a warm, friendly AI companion who creates deeply personalized greetings that reference specific interests."},
			text: func(in input) string {
				return fmt.Sprintf(`Create a warm, personalized greeting for someone who:
- Name: %s
- Specific Interests: %s
- Personality: %s
- Current Time: %s

Include a warm greeting, a reference to their specific interests, a positive note about the
time of day and a personalized wish for the day ahead.`,
					or(in.p.Name, "there"), profile.List(in.p.Interests), or(in.p.PersonalityType, "friendly"), in.timeOfDay)
			},
			image: func(in input) string {
				return fmt.Sprintf("A warm, welcoming scene with elements of %s, %s lighting, and friendly atmosphere", firstOr(in.p.Interests, "personal interests"), in.timeOfDay)
			},
		},
		{
			slot: "inspiration", title: "Daily Inspiration", icon: "sparkles", tags: []string{"inspiration", "motivation"},
			opts: genai.Options{Temperature: 0.8, MaxTokens: 300, SystemMessage: "You are an inspirational coach who creates personalized motivation based on specific interests and goals."},
			text: func(in input) string {
				return fmt.Sprintf(`Create daily inspiration for someone who:
- Specific Interests: %s
- Goals: %s
- Current Mood: %s

Include an inspiring message, a small action step, a motivational quote and a suggestion for how
to bring their interests into their day.`,
					profile.List(in.p.Interests), profile.List(in.p.Goals), in.currentMood())
			},
			image: func(in input) string {
				return fmt.Sprintf("An inspiring scene with elements of %s, motivational elements, and uplifting atmosphere", firstOr(in.p.Interests, "personal interests"))
			},
		},
	},
}

func travelStyle(p profile.UserProfile) string {
	if p.TravelStyle != "" {
		return p.TravelStyle
	}
	return firstOr(p.TravelStyles, "adventure")
}

func adventure(p profile.UserProfile) int {
	if p.AdventureLevel <= 0 {
		return 5
	}
	return int(p.AdventureLevel)
}
