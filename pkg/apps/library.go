// Package apps resolves human-friendly application names to launch targets.
package apps

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// Target is the command line used to launch an application. The first token
// is an executable, path, URL or URI; the rest are arguments.
type Target []string

// UnmarshalYAML accepts either a single string or a list of strings. A single
// string is kept as one token so paths containing spaces survive.
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		return t.set([]string{s})
	case yaml.SequenceNode:
		var parts []string
		if err := value.Decode(&parts); err != nil {
			return err
		}
		return t.set(parts)
	default:
		return fmt.Errorf("line %d: launch target must be a string or a list of strings", value.Line)
	}
}

// UnmarshalTOML implements toml.Unmarshaler with the same rules as UnmarshalYAML.
func (t *Target) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		return t.set([]string{x})
	case []any:
		parts := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("launch target element %d is %T, want string", i, item)
			}
			parts = append(parts, s)
		}
		return t.set(parts)
	default:
		return fmt.Errorf("launch target must be a string or an array of strings, got %T", v)
	}
}

func (t *Target) set(parts []string) error {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return errors.New("launch target is empty")
	}
	*t = out
	return nil
}

// Library is an immutable, case-insensitive table of launch targets.
type Library struct {
	entries map[string]Target
	names   []string
}

// NewLibrary merges the given tables in order; later tables override earlier
// ones. Keys are trimmed and lower-cased, empty keys and targets are skipped.
func NewLibrary(tables ...map[string]Target) *Library {
	entries := make(map[string]Target)
	for _, table := range tables {
		for name, target := range table {
			key := normalizeName(name)
			if key == "" || len(target) == 0 {
				continue
			}
			entries[key] = append(Target(nil), target...)
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Library{entries: entries, names: names}
}

// Lookup returns the target registered under name, ignoring case.
func (l *Library) Lookup(name string) (Target, bool) {
	if l == nil {
		return nil, false
	}
	target, ok := l.entries[normalizeName(name)]
	if !ok {
		return nil, false
	}
	return append(Target(nil), target...), true
}

// Names returns the registered names in sorted order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Len reports the number of entries.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Suggest returns the closest registered name for an unknown one.
func (l *Library) Suggest(name string) (string, bool) {
	key := normalizeName(name)
	if l == nil || key == "" {
		return "", false
	}
	matches := fuzzy.Find(key, l.names)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
