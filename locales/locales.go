// Package locales implements the bidirectional mapping between help-center
// locale codes and translation-system locale codes. The mapping is built once
// from configuration and is immutable afterwards; components that need it
// receive the same *Map by reference.
package locales

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidLocale indicates a locale code absent from the mapping.
	ErrInvalidLocale = errors.New("invalid locale")

	// ErrAmbiguousMapping indicates that two source locales map to the same
	// translation-system locale, which would make the inverse lookup
	// depend on iteration order.
	ErrAmbiguousMapping = errors.New("ambiguous locale mapping")
)

// Map is the bidirectional locale mapping. Immutable after New.
type Map struct {
	forward map[string]string
	sources []string
}

// New builds a Map from source-locale → translation-locale pairs.
// Source locale keys are normalized to lower case. A duplicate translation
// locale is rejected with ErrAmbiguousMapping.
func New(mapping map[string]string) (*Map, error) {
	m := &Map{forward: make(map[string]string, len(mapping))}

	seen := make(map[string]string, len(mapping))
	for src, dst := range mapping {
		src = strings.ToLower(strings.TrimSpace(src))
		dst = strings.TrimSpace(dst)
		if src == "" || dst == "" {
			return nil, errors.Newf("empty locale mapping entry %q: %q", src, dst)
		}
		if prev, ok := seen[dst]; ok {
			return nil, errors.Wrapf(ErrAmbiguousMapping,
				"both %q and %q map to %q", prev, src, dst)
		}
		seen[dst] = src
		m.forward[src] = dst
		m.sources = append(m.sources, src)
	}
	sort.Strings(m.sources)

	return m, nil
}

// ToTranslation maps a help-center locale to its translation-system locale.
func (m *Map) ToTranslation(source string) (string, error) {
	dst, ok := m.forward[strings.ToLower(source)]
	if !ok {
		return "", errors.Wrapf(ErrInvalidLocale, "no mapping for source locale %q", source)
	}
	return dst, nil
}

// ToSource maps a translation-system locale back to its help-center locale
// by scanning the table. New guarantees the answer is unique.
func (m *Map) ToSource(translation string) (string, error) {
	for _, src := range m.sources {
		if m.forward[src] == translation {
			return src, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidLocale, "no mapping for translation locale %q", translation)
}

// Sources returns all configured source locales in sorted order.
func (m *Map) Sources() []string {
	out := make([]string, len(m.sources))
	copy(out, m.sources)
	return out
}

// ValidateList reports whether input is the literal "all" or a
// comma-separated list of configured source locales.
func (m *Map) ValidateList(input string) bool {
	if input == "all" {
		return true
	}
	for _, loc := range strings.Split(input, ",") {
		if _, ok := m.forward[strings.ToLower(strings.TrimSpace(loc))]; !ok {
			return false
		}
	}
	return true
}

// ExpandList resolves "all" to every configured source locale, or splits and
// validates a comma-separated list.
func (m *Map) ExpandList(input string) ([]string, error) {
	if input == "all" {
		return m.Sources(), nil
	}
	var out []string
	for _, loc := range strings.Split(input, ",") {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if _, ok := m.forward[loc]; !ok {
			return nil, errors.Wrapf(ErrInvalidLocale, "unknown source locale %q", loc)
		}
		out = append(out, loc)
	}
	return out, nil
}
