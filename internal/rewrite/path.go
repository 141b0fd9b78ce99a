package rewrite

import "strings"

// Path tracks the sequence of element local names from the document root to
// the currently open element. Every Start pushes a segment, every End pops
// one; the tracker's length always equals the depth of currently-open
// elements.
type Path struct {
	segments []string
}

// Push opens a new element named name.
func (p *Path) Push(name string) {
	p.segments = append(p.segments, name)
}

// Pop closes the innermost open element.
func (p *Path) Pop() {
	if len(p.segments) == 0 {
		return
	}
	p.segments = p.segments[:len(p.segments)-1]
}

// Len reports the current depth.
func (p *Path) Len() int {
	return len(p.segments)
}

// String renders the current path as a slash-joined string.
func (p *Path) String() string {
	return strings.Join(p.segments, "/")
}

// Equal reports whether the current path is exactly the given segment
// sequence.
func (p *Path) Equal(segments []string) bool {
	if len(p.segments) != len(segments) {
		return false
	}
	for i, s := range p.segments {
		if s != segments[i] {
			return false
		}
	}
	return true
}

// IsAboveSplit reports whether the current path is "above" the split path:
// a proper prefix of it, or unrelated to it entirely (diverges before
// reaching the split depth). It gates whether events broadcast to every
// group buffer (true) or accumulate in the pending buffer (false, meaning
// the current path is at or below the split element).
//
// Matching leading segments shorter than len(split) counts as "above": an
// unrelated sibling subtree is treated the same as a strict ancestor.
func (p *Path) IsAboveSplit(split []string) bool {
	return isAbove(p.segments, split)
}

// isAbove is the segment-slice form of IsAboveSplit, usable without an open
// Path — the rule compiler uses it to classify a transformation's target as
// inside or outside the split element at compile time.
func isAbove(current, split []string) bool {
	matched := 0
	for i := 0; i < len(current) && i < len(split); i++ {
		if current[i] != split[i] {
			break
		}
		matched++
	}
	return matched < len(split)
}

// splitPath parses the configured slash-separated split path into segments.
func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}
