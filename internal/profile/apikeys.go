package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/memojo/memojo/internal/storage"
)

// KnownServices lists the optional third-party integrations whose keys the
// settings screen collects. Other service names are accepted as well.
var KnownServices = []string{"spotify", "news", "weather", "unsplash"}

// APIKeys returns the service → key map stored under APIKeysKey.
func (m *Manager) APIKeys() (map[string]string, error) {
	raw, err := m.store.Get(APIKeysKey)
	if errors.Is(err, storage.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading api keys: %w", err)
	}
	keys := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("decoding api keys: %w", err)
	}
	return keys, nil
}

// APIKey returns the stored key for service; ok is false when none is set.
func (m *Manager) APIKey(service string) (key string, ok bool, err error) {
	keys, err := m.APIKeys()
	if err != nil {
		return "", false, err
	}
	key, ok = keys[strings.ToLower(strings.TrimSpace(service))]
	return key, ok, nil
}

// SetAPIKey stores key for service. An empty key removes the entry.
func (m *Manager) SetAPIKey(service, key string) error {
	service = strings.ToLower(strings.TrimSpace(service))
	if service == "" {
		return errors.New("profile: service name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keys, err := m.APIKeys()
	if err != nil {
		return err
	}
	if key = strings.TrimSpace(key); key == "" {
		delete(keys, service)
	} else {
		keys[service] = key
	}

	b, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encoding api keys: %w", err)
	}
	if err := m.store.Set(APIKeysKey, string(b)); err != nil {
		return fmt.Errorf("saving api keys: %w", err)
	}
	return nil
}

// MaskedAPIKeys returns the configured services with all but the last four
// characters of each key hidden, sorted by service.
func (m *Manager) MaskedAPIKeys() ([]MaskedKey, error) {
	keys, err := m.APIKeys()
	if err != nil {
		return nil, err
	}
	out := make([]MaskedKey, 0, len(keys))
	for svc, k := range keys {
		out = append(out, MaskedKey{Service: svc, Key: mask(k)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out, nil
}

// MaskedKey is a display-safe API key entry.
type MaskedKey struct {
	Service string `json:"service"`
	Key     string `json:"key"`
}

func mask(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}
