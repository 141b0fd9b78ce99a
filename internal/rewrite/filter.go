package rewrite

import "regexp"

// neverMatch is the sentinel pattern substituted for any configured regex
// that fails to compile: a lone "a" can never be followed by a start-of-text
// anchor, so it matches nothing, while still being a syntactically valid
// RE2 expression.
var neverMatch = regexp.MustCompile(`a^`)

// compiledPatternSet is the runtime form of a PatternSet: exact strings plus
// pre-compiled regexes, both keyed by path.
type compiledPatternSet struct {
	exact map[string]map[string]bool
	regex map[string][]*regexp.Regexp
}

func compilePatternSet(ps PatternSet, warn WarnFunc) compiledPatternSet {
	out := compiledPatternSet{
		exact: make(map[string]map[string]bool, len(ps.Exact)),
		regex: make(map[string][]*regexp.Regexp, len(ps.Regex)),
	}
	for path, values := range ps.Exact {
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		out.exact[path] = set
	}
	for path, patterns := range ps.Regex {
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, pattern := range patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				warn("filter_regex_not_compilable", path+": "+pattern)
				re = neverMatch
			}
			compiled = append(compiled, re)
		}
		out.regex[path] = compiled
	}
	return out
}

// hasPath reports whether the pattern set has any entry — exact or regex —
// for path. A path may legitimately appear in both sub-maps.
func (ps compiledPatternSet) hasPath(path string) bool {
	if _, ok := ps.exact[path]; ok {
		return true
	}
	if _, ok := ps.regex[path]; ok {
		return true
	}
	return false
}

// matches reports whether text matches any exact or regex entry for path.
func (ps compiledPatternSet) matches(path, text string) bool {
	if ps.exact[path][text] {
		return true
	}
	for _, re := range ps.regex[path] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// compiledFilterTable is the runtime form of FilterTable.
type compiledFilterTable struct {
	allow compiledPatternSet
	block compiledPatternSet
}

func compileFilterTable(t FilterTable, warn WarnFunc) compiledFilterTable {
	return compiledFilterTable{
		allow: compilePatternSet(t.Allow, warn),
		block: compilePatternSet(t.Block, warn),
	}
}

// rejects implements the filter evaluator for a single text
// event at path. It reports whether this event should flip the split
// element's include flag to false; include itself is monotone and owned by
// the rewriter, not by the filter.
func (f compiledFilterTable) rejects(path, text string) bool {
	if f.allow.hasPath(path) && !f.allow.matches(path, text) {
		return true
	}
	if f.block.hasPath(path) && f.block.matches(path, text) {
		return true
	}
	return false
}
