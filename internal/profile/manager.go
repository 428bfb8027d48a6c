package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/memojo/memojo/internal/storage"
)

// Profile store keys.
const (
	ProfileKey = "memojo-user-data"
	APIKeysKey = "memojo-api-keys"
)

// ErrNoProfile is returned when onboarding has not produced a profile yet.
var ErrNoProfile = errors.New("profile: not found")

// Store is the key-value persistence the Manager needs.
// Implemented by storage.Store; a missing key is storage.ErrNotFound.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager provides cached, typed access to the profile blob.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *UserProfile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second read cache.
func NewManager(store Store) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{store: store, clock: clock, ttl: ttl}
}

// Get returns the stored profile, or ErrNoProfile before onboarding.
func (m *Manager) Get() (UserProfile, error) {
	m.mu.RLock()
	if m.fresh() {
		p := m.cached.clone()
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fresh() {
		return m.cached.clone(), nil
	}

	raw, err := m.store.Get(ProfileKey)
	if errors.Is(err, storage.ErrNotFound) {
		return UserProfile{}, ErrNoProfile
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("loading profile: %w", err)
	}

	var p UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return UserProfile{}, fmt.Errorf("decoding profile: %w", err)
	}
	m.cached = &p
	m.cachedAt = m.clock.Now()
	return p.clone(), nil
}

// GetOrEmpty is Get with a missing profile mapped to the zero value.
func (m *Manager) GetOrEmpty() (UserProfile, error) {
	p, err := m.Get()
	if errors.Is(err, ErrNoProfile) {
		return UserProfile{}, nil
	}
	return p, err
}

// must hold mu
func (m *Manager) fresh() bool {
	return m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl))
}

// Replace validates and persists p as the whole profile.
func (m *Manager) Replace(p UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ProfileKey, string(b)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	m.cached = nil
	return nil
}

// Summary returns a compact description of the profile for prompts and MCP clients.
func (m *Manager) Summary() (string, error) {
	p, err := m.GetOrEmpty()
	if err != nil {
		return "", fmt.Errorf("getting profile for summary: %w", err)
	}
	return summarize(p), nil
}

// maxSummaryChars keeps the summary under roughly 500 tokens.
const maxSummaryChars = 2000

func summarize(p UserProfile) string {
	var parts []string

	if p.Name != "" {
		who := p.Name
		if p.Tagline != "" {
			who += " (" + p.Tagline + ")"
		}
		parts = append(parts, fmt.Sprintf("User: %s.", who))
	}
	if p.Profession != "" {
		parts = append(parts, fmt.Sprintf("Works as: %s.", p.Profession))
	}
	if p.Location != "" {
		parts = append(parts, fmt.Sprintf("Lives in: %s.", p.Location))
	}

	lists := map[string][]string{
		"Books":         p.BookGenres,
		"Movies":        p.MovieGenres,
		"Music":         p.MusicGenres,
		"Cuisines":      p.Cuisines,
		"Tech":          p.TechInterests,
		"Wellness":      p.WellnessAreas,
		"Travel":        p.TravelStyles,
		"Values":        p.LifeValues,
		"Wants to feel": p.DesiredMoods,
		"Interests":     p.Interests,
	}
	labels := make([]string, 0, len(lists))
	for label, values := range lists {
		if len(values) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s: %s.", label, strings.Join(lists[label], ", ")))
	}

	if people := p.People(); len(people) > 0 {
		parts = append(parts, fmt.Sprintf("Important people: %s.", strings.Join(people, ", ")))
	}

	if len(parts) == 0 {
		return "User profile: not yet configured."
	}

	summary := strings.Join(parts, " ")
	if len(summary) > maxSummaryChars {
		end := maxSummaryChars
		for end > 0 && !utf8.RuneStart(summary[end]) {
			end--
		}
		if idx := strings.LastIndex(summary[:end], " "); idx > 0 {
			summary = summary[:idx]
		} else {
			summary = summary[:end]
		}
	}
	return summary
}
