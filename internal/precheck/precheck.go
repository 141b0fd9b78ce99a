// Package precheck validates that a rewrite configuration's split/grouping
// tables and filter tables agree with each other before a run starts,
// surfacing the kind of silent misconfiguration that would otherwise only
// show up as missing or misrouted output.
package precheck

import (
	"sort"

	"github.com/tbielander/xtract/internal/rewriteconfig"
)

// Finding is one inconsistency: the XML path it was found at, and the
// conflicting values involved.
type Finding struct {
	Path   string
	Values []string
}

// Report is the outcome of Check: at most one of AllowBlockConflict or the
// three FilterSplit findings is populated, mirroring the original
// check_consistency control flow (an allow/block key conflict short-circuits
// the finer-grained filter/split comparison).
type Report struct {
	// AllowBlockConflict lists paths present in both the allow and block
	// pattern tables — an unresolvable filter configuration.
	AllowBlockConflict []string

	// SplittingWithoutAllowance lists grouping paths that have split values
	// with no matching allowlist entry.
	SplittingWithoutAllowance []Finding
	// SplittingDespiteBlocking lists grouping paths whose split values are
	// also blocked, so they'll never reach an output group as themselves.
	SplittingDespiteBlocking []Finding
	// AllowanceWithoutSplitting lists allowlisted values that never appear
	// as a grouping key, so the allow entry can never be exercised.
	AllowanceWithoutSplitting []Finding
}

// Empty reports whether the check found nothing to warn about.
func (r Report) Empty() bool {
	return len(r.AllowBlockConflict) == 0 &&
		len(r.SplittingWithoutAllowance) == 0 &&
		len(r.SplittingDespiteBlocking) == 0 &&
		len(r.AllowanceWithoutSplitting) == 0
}

// Check compares cfg's filter and split/grouping tables for the three kinds
// of drift the original pipeline flags.
func Check(cfg *rewriteconfig.Config) Report {
	allowKeys := unionKeys(cfg.Filter.Allowlist, cfg.Filter.AllowlistRegex)
	blockKeys := unionKeys(cfg.Filter.Blocklist, cfg.Filter.BlocklistRegex)

	if conflict := intersect(allowKeys, blockKeys); len(conflict) > 0 {
		return Report{AllowBlockConflict: conflict}
	}

	var report Report
	for path, byText := range cfg.Split.Grouping {
		splitValues := keys(byText)

		if allowKeys[path] {
			allowedExact := cfg.Filter.Allowlist[path]
			allowedRegex := cfg.Filter.AllowlistRegex[path]
			allowed := dedupe(append(append([]string{}, allowedExact...), allowedRegex...))

			if d := difference(splitValues, allowed); len(d) > 0 {
				report.SplittingWithoutAllowance = append(report.SplittingWithoutAllowance, Finding{path, d})
			}
			if d := difference(allowedExact, splitValues); len(d) > 0 {
				report.AllowanceWithoutSplitting = append(report.AllowanceWithoutSplitting, Finding{path, d})
			}
		}

		if blocked, ok := cfg.Filter.Blocklist[path]; ok {
			if d := intersect(toSet(splitValues), toSet(blocked)); len(d) > 0 {
				report.SplittingDespiteBlocking = append(report.SplittingDespiteBlocking, Finding{path, d})
			}
		}
	}

	sortFindings(report.SplittingWithoutAllowance)
	sortFindings(report.SplittingDespiteBlocking)
	sortFindings(report.AllowanceWithoutSplitting)
	return report
}

func sortFindings(f []Finding) {
	sort.Slice(f, func(i, j int) bool { return f[i].Path < f[j].Path })
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func unionKeys(maps ...map[string][]string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range maps {
		for k := range m {
			out[k] = true
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// difference returns the values of a not present in b.
func difference(a, b []string) []string {
	inB := toSet(b)
	var out []string
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// intersect returns a deterministically sorted slice of keys common to both
// sets.
func intersect(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
