// Package rustc obtains per-triple compile-time configuration snapshots from
// the Rust compiler and caches them in the workspace state store.
package rustc

import (
	"sort"
	"strings"
)

// Snapshot is the parsed `rustc --print cfg` output for one target triple.
// It is immutable once built and safe to share across goroutines.
type Snapshot struct {
	facts map[string][]string
}

// NewSnapshot builds a snapshot from a key → values map. Bare flags use a
// nil or empty value slice.
func NewSnapshot(facts map[string][]string) Snapshot {
	return Snapshot{facts: facts}
}

// ParseCfgDump parses `rustc --print cfg` output: one fact per line, either
// a bare flag (`unix`) or key="value" (`target_os="linux"`). Lines that fit
// neither shape are skipped.
func ParseCfgDump(out string) Snapshot {
	facts := make(map[string][]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, rest, found := strings.Cut(line, "=")
		if !found {
			if _, ok := facts[key]; !ok {
				facts[key] = nil
			}
			continue
		}
		value := strings.TrimSpace(rest)
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			continue
		}
		facts[key] = append(facts[key], value[1:len(value)-1])
	}
	return Snapshot{facts: facts}
}

// Has reports whether the key is present, with or without a value.
func (s Snapshot) Has(key string) bool {
	_, ok := s.facts[key]
	return ok
}

// HasValue reports whether the key carries exactly this value.
func (s Snapshot) HasValue(key, value string) bool {
	for _, v := range s.facts[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Facts returns the underlying key → values map for persistence. Callers
// must not mutate the result.
func (s Snapshot) Facts() map[string][]string {
	return s.facts
}

// Keys returns the fact keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.facts))
	for k := range s.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
