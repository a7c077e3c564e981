package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRoster is returned when a roster definition cannot be used.
var ErrInvalidRoster = errors.New("invalid store roster")

// Store identifies a supermarket chain the engine prices carts against.
type Store struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Roster is the ordered list of supported stores. Order is significant: it breaks
// ties when two stores produce the same total.
type Roster []Store

// Default returns the reference deployment roster.
func Default() Roster {
	return Roster{
		New("coto", "COTO"),
		New("carrefour", "CARREFOUR"),
		New("dia", "DIA"),
		New("jumbo", "JUMBO"),
		New("masonline", "MAS ONLINE"),
	}
}

// New builds a store descriptor deriving the slug from the display name.
func New(key, name string) Store {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.ToUpper(key)
	}
	return Store{Key: key, Name: name, Slug: Slugify(name)}
}

// Slugify lowercases the name and strips separators ("MAS ONLINE" -> "masonline").
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '-', '_', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseRoster reads a comma separated list of "key:Display Name" entries. A bare
// "key" entry uses the upper-cased key as display name. An empty value yields the
// default roster.
func ParseRoster(csv string) (Roster, error) {
	if strings.TrimSpace(csv) == "" {
		return Default(), nil
	}
	seen := map[string]struct{}{}
	var roster Roster
	for _, part := range strings.Split(csv, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		key, name, _ := strings.Cut(entry, ":")
		s := New(key, name)
		if s.Key == "" {
			return nil, fmt.Errorf("empty store key in %q: %w", entry, ErrInvalidRoster)
		}
		if _, dup := seen[s.Key]; dup {
			return nil, fmt.Errorf("duplicate store key %q: %w", s.Key, ErrInvalidRoster)
		}
		seen[s.Key] = struct{}{}
		roster = append(roster, s)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("no stores defined: %w", ErrInvalidRoster)
	}
	return roster, nil
}

// Lookup finds a store by key, case-insensitively.
func (r Roster) Lookup(key string) (Store, bool) {
	key = strings.TrimSpace(key)
	for _, s := range r {
		if strings.EqualFold(s.Key, key) {
			return s, true
		}
	}
	return Store{}, false
}

// Keys returns the store keys in roster order.
func (r Roster) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, s := range r {
		keys = append(keys, s.Key)
	}
	return keys
}
