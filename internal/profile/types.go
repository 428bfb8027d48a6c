package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// UserProfile is the onboarding questionnaire result. Every field except Name
// is optional. The JSON names match the blob stored under ProfileKey.
type UserProfile struct {
	// Basic info
	Name     string `json:"name"`
	Tagline  string `json:"tagline,omitempty"`
	Age      string `json:"age,omitempty"`
	Location string `json:"location,omitempty"`

	// Books & reading
	BookGenres    []string `json:"bookGenres,omitempty"`
	ReadingHabits []string `json:"readingHabits,omitempty"`
	FavoriteBooks string   `json:"favoriteBooks,omitempty"`
	ReadingGoals  string   `json:"readingGoals,omitempty"`

	// Movies & entertainment
	MovieGenres   []string `json:"movieGenres,omitempty"`
	WatchingStyle string   `json:"watchingStyle,omitempty"`
	Platforms     string   `json:"platforms,omitempty"`
	FavoriteShows string   `json:"favoriteShows,omitempty"`

	// Music
	MusicGenres    []string `json:"musicGenres,omitempty"`
	MoodPlaylists  []string `json:"moodPlaylists,omitempty"`
	SpotifyConnect bool     `json:"spotifyConnect,omitempty"`
	Instruments    string   `json:"instruments,omitempty"`
	ConcertLover   bool     `json:"concertLover,omitempty"`

	// Food
	FoodPreferences     []string `json:"foodPreferences,omitempty"`
	Cuisines            []string `json:"cuisines,omitempty"`
	ComfortFood         string   `json:"comfortFood,omitempty"`
	CookingLevel        string   `json:"cookingLevel,omitempty"`
	DietaryRestrictions string   `json:"dietaryRestrictions,omitempty"`

	// Tech & learning
	TechInterests  []string `json:"techInterests,omitempty"`
	LearningStyle  string   `json:"learningStyle,omitempty"`
	LearningStyles []string `json:"learningStyles,omitempty"`
	OnlinePresence string   `json:"onlinePresence,omitempty"`

	// Wellness
	WellnessAreas      []string `json:"wellnessAreas,omitempty"`
	RechargeActivities string   `json:"rechargeActivities,omitempty"`
	StressRelievers    []string `json:"stressRelievers,omitempty"`
	ExerciseHabits     string   `json:"exerciseHabits,omitempty"`

	// Humor, sports, hobbies
	HumorTypes        []string `json:"humorTypes,omitempty"`
	FavoriteComedians string   `json:"favoriteComedians,omitempty"`
	Sports            []string `json:"sports,omitempty"`
	GamingStyle       string   `json:"gamingStyle,omitempty"`
	CreativeOutlets   []string `json:"creativeOutlets,omitempty"`
	Hobbies           string   `json:"hobbies,omitempty"`

	// Social & travel
	SocialStyles      []string `json:"socialStyles,omitempty"`
	IdealWeekend      string   `json:"idealWeekend,omitempty"`
	TravelStyles      []string `json:"travelStyles,omitempty"`
	TravelStyle       string   `json:"travelStyle,omitempty"`
	DreamDestinations string   `json:"dreamDestinations,omitempty"`

	// Life, work & goals
	LifeValues            []string `json:"lifeValues,omitempty"`
	CurrentFocus          string   `json:"currentFocus,omitempty"`
	LifeGoals             string   `json:"lifeGoals,omitempty"`
	MorningTypes          []string `json:"morningTypes,omitempty"`
	Profession            string   `json:"profession,omitempty"`
	Interests             []string `json:"interests,omitempty"`
	Industries            []string `json:"industries,omitempty"`
	ProfessionalInterests []string `json:"professionalInterests,omitempty"`
	CareerGoals           []string `json:"careerGoals,omitempty"`
	Goals                 []string `json:"goals,omitempty"`

	// Mood & people
	DesiredMoods       []string `json:"desiredMoods,omitempty"`
	MoodTracking       bool     `json:"moodTracking,omitempty"`
	FavoritePeople     string   `json:"favoritePeople,omitempty"` // comma-separated
	RelationshipStatus string   `json:"relationshipStatus,omitempty"`
	PetLover           bool     `json:"petLover,omitempty"`

	// Personalization depth
	PersonalityType string `json:"personalityType,omitempty"`
	IntroExtroLevel Slider `json:"introExtroLevel,omitempty"`
	OptimismLevel   Slider `json:"optimismLevel,omitempty"`
	AdventureLevel  Slider `json:"adventureLevel,omitempty"`
	CreativityLevel Slider `json:"creativityLevel,omitempty"`
}

// ErrNameRequired is returned by Validate when the display name is blank.
var ErrNameRequired = errors.New("profile: name is required")

// Validate checks the only mandatory field.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// People splits FavoritePeople on commas, dropping blanks.
func (p UserProfile) People() []string {
	var out []string
	for _, s := range strings.Split(p.FavoritePeople, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p UserProfile) clone() UserProfile {
	cp := p
	for _, f := range []*[]string{
		&cp.BookGenres, &cp.ReadingHabits, &cp.MovieGenres, &cp.MusicGenres, &cp.MoodPlaylists,
		&cp.FoodPreferences, &cp.Cuisines, &cp.TechInterests, &cp.LearningStyles, &cp.WellnessAreas,
		&cp.StressRelievers, &cp.HumorTypes, &cp.Sports, &cp.CreativeOutlets, &cp.SocialStyles,
		&cp.TravelStyles, &cp.LifeValues, &cp.MorningTypes, &cp.Interests, &cp.Industries,
		&cp.ProfessionalInterests, &cp.CareerGoals, &cp.Goals, &cp.DesiredMoods,
	} {
		*f = slices.Clone(*f)
	}
	return cp
}

// Slider is a 1-10 onboarding slider. The questionnaire stores sliders as
// one-element arrays ([7]); plain numbers are accepted too.
type Slider int

func (s *Slider) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Slider(n)
		return nil
	}
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("slider: want number or [number], got %s", data)
	}
	if len(arr) > 0 {
		*s = Slider(arr[0])
	}
	return nil
}

// List renders values for prompt interpolation: comma-joined, or "various" when empty.
func List(values []string) string {
	if len(values) == 0 {
		return "various"
	}
	return strings.Join(values, ", ")
}
