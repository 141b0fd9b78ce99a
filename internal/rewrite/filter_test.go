package rewrite

import "testing"

func TestFilterTable_Allowlist(t *testing.T) {
	f := compileFilterTable(FilterTable{
		Allow: PatternSet{Exact: map[string][]string{"root/item/kind": {"A", "B"}}},
	}, noopWarn)

	if f.rejects("root/item/kind", "A") {
		t.Errorf("allowed value A must not be rejected")
	}
	if !f.rejects("root/item/kind", "C") {
		t.Errorf("value C absent from allowlist must be rejected")
	}
	if f.rejects("root/item/other", "anything") {
		t.Errorf("path with no allowlist entry must not be rejected by the allow side")
	}
}

func TestFilterTable_Blocklist(t *testing.T) {
	f := compileFilterTable(FilterTable{
		Block: PatternSet{Regex: map[string][]string{"root/item/kind": {"^X"}}},
	}, noopWarn)

	if !f.rejects("root/item/kind", "X1") {
		t.Errorf("value matching block regex must be rejected")
	}
	if f.rejects("root/item/kind", "Y1") {
		t.Errorf("value not matching block regex must not be rejected")
	}
}

func TestFilterTable_BadRegexFallsBackToNeverMatch(t *testing.T) {
	var warned string
	warn := func(code, detail string) { warned = code }

	f := compileFilterTable(FilterTable{
		Block: PatternSet{Regex: map[string][]string{"root/item/kind": {"("}}},
	}, warn)

	if warned != "filter_regex_not_compilable" {
		t.Fatalf("expected a filter_regex_not_compilable warning, got %q", warned)
	}
	if f.rejects("root/item/kind", "anything") {
		t.Errorf("an uncompilable regex must behave as never-matching, not reject everything")
	}
}

func TestFilterTable_AllowAndBlockBothApply(t *testing.T) {
	f := compileFilterTable(FilterTable{
		Allow: PatternSet{Exact: map[string][]string{"root/item/kind": {"A"}}},
		Block: PatternSet{Exact: map[string][]string{"root/item/flag": {"bad"}}},
	}, noopWarn)

	if f.rejects("root/item/kind", "A") {
		t.Errorf("A is allowed and should not be rejected")
	}
	if !f.rejects("root/item/flag", "bad") {
		t.Errorf("bad is blocked and should be rejected")
	}
}
