// Package preferences keeps a bounded log of what the user loved, saved or viewed.
package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/memojo/memojo/internal/storage"
)

// Key is the store key holding the log.
const Key = "mojo_user_preferences"

// MaxEvents is how many events the log keeps; older ones are dropped first.
const MaxEvents = 100

// Action is what the user did with an item.
type Action string

const (
	Love Action = "love"
	Save Action = "save"
	View Action = "view"
)

func (a Action) valid() bool {
	return a == Love || a == Save || a == View
}

// Event is one entry in the log.
type Event struct {
	ItemID    string    `json:"itemId"`
	ItemType  string    `json:"itemType"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
}

// Stats summarises the log.
type Stats struct {
	TotalLoved      int            `json:"totalLoved"`
	TypePreferences map[string]int `json:"typePreferences"`
	RecentActivity  []Event        `json:"recentActivity"`
}

// KV is the slice of storage.Store the log needs.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Log is the preference event log.
type Log struct {
	kv  KV
	now func() time.Time

	mu sync.Mutex
}

func New(kv KV) *Log {
	return &Log{kv: kv, now: time.Now}
}

// Record appends e, stamping it if Timestamp is zero, and trims the log to MaxEvents.
func (l *Log) Record(e Event) error {
	if e.ItemID == "" {
		return errors.New("preferences: item id is required")
	}
	if !e.Action.valid() {
		return fmt.Errorf("preferences: unknown action %q", e.Action)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.load()
	if err != nil {
		return err
	}
	events = append(events, e)
	if len(events) > MaxEvents {
		events = events[len(events)-MaxEvents:]
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}
	if err := l.kv.Set(Key, string(data)); err != nil {
		return fmt.Errorf("storing preferences: %w", err)
	}
	return nil
}

// All returns every event, oldest first.
func (l *Log) All() ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Loved returns the love events, oldest first.
func (l *Log) Loved() ([]Event, error) {
	events, err := l.All()
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range events {
		if e.Action == Love {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *Log) IsLoved(itemID string) (bool, error) {
	loved, err := l.Loved()
	if err != nil {
		return false, err
	}
	for _, e := range loved {
		if e.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

// Stats counts loves per item type and returns the last 10 events.
func (l *Log) Stats() (Stats, error) {
	events, err := l.All()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TypePreferences: make(map[string]int)}
	for _, e := range events {
		if e.Action != Love {
			continue
		}
		st.TotalLoved++
		st.TypePreferences[e.ItemType]++
	}
	st.RecentActivity = append([]Event{}, events[max(0, len(events)-10):]...)
	return st, nil
}

// load must be called with l.mu held. A corrupt blob reads as an empty log.
func (l *Log) load() ([]Event, error) {
	raw, err := l.kv.Get(Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		slog.Warn("preference log is corrupt, starting over", "error", err)
		return nil, nil
	}
	return events, nil
}
