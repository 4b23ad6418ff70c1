package giveaway

import "strings"

// NormalizeNickname canonicalizes one participant identifier: surrounding
// space and a single leading "@" are dropped, the rest is lowercased.
func NormalizeNickname(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseNicknames splits a whitespace-separated blob into normalized,
// distinct nicknames in first-seen order.
func ParseNicknames(blob string) []string {
	return NormalizeNicknames(strings.Fields(blob))
}

// NormalizeNicknames normalizes and dedupes in first-seen order. Empty
// entries are dropped.
func NormalizeNicknames(in []string) []string {
	set := NewEntrantSet()
	for _, n := range in {
		set.Add(n)
	}
	return set.Members()
}

// EntrantSet is an insertion-ordered set of nicknames. The zero value is
// not usable, use NewEntrantSet.
type EntrantSet struct {
	seen  map[string]struct{}
	order []string
}

func NewEntrantSet(existing ...string) *EntrantSet {
	s := &EntrantSet{seen: make(map[string]struct{}, len(existing))}
	for _, n := range existing {
		s.Add(n)
	}
	return s
}

// Add inserts a nickname and reports whether it was new
func (s *EntrantSet) Add(nickname string) bool {
	n := NormalizeNickname(nickname)
	if n == "" {
		return false
	}
	if _, ok := s.seen[n]; ok {
		return false
	}
	s.seen[n] = struct{}{}
	s.order = append(s.order, n)
	return true
}

// Merge adds every nickname and returns the net-new ones in order
func (s *EntrantSet) Merge(nicknames []string) []string {
	var added []string
	for _, n := range nicknames {
		if s.Add(n) {
			added = append(added, NormalizeNickname(n))
		}
	}
	return added
}

func (s *EntrantSet) Contains(nickname string) bool {
	_, ok := s.seen[NormalizeNickname(nickname)]
	return ok
}

func (s *EntrantSet) Len() int { return len(s.order) }

// Members returns a copy of the set in insertion order
func (s *EntrantSet) Members() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
