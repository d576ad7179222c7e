package runtime

import "regexp"

// RegexMatchState holds the capture groups of the most recent =~ match
// against a given target string, plus the cursor needed to resume a `g`
// (global) match from where the previous one left off.
type RegexMatchState struct {
	re     *regexp.Regexp
	target string
	pos    int
	groups []string
}

func NewRegexMatchState(re *regexp.Regexp, target string) *RegexMatchState {
	return &RegexMatchState{re: re, target: target}
}

// Match advances the cursor and reports whether another match was found. A
// non-global match always starts the search from position 0.
func (s *RegexMatchState) Match(global bool) bool {
	start := 0
	if global {
		start = s.pos
	}
	if start > len(s.target) {
		s.groups = nil
		return false
	}
	loc := s.re.FindStringSubmatchIndex(s.target[start:])
	if loc == nil {
		s.groups = nil
		return false
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 {
			continue
		}
		groups[i] = s.target[start+lo : start+hi]
	}
	s.groups = groups
	if loc[1] == loc[0] {
		s.pos = start + loc[1] + 1 // avoid looping forever on a zero-width match
	} else {
		s.pos = start + loc[1]
	}
	return true
}

// Group returns the n'th capture group of the last successful match (group
// 0 is the whole match), or "" if n is out of range or there was no match.
func (s *RegexMatchState) Group(n int) string {
	if n < 0 || n >= len(s.groups) {
		return ""
	}
	return s.groups[n]
}

// Reset rewinds the cursor so the next Match(true) call starts over.
func (s *RegexMatchState) Reset() { s.pos = 0; s.groups = nil }
