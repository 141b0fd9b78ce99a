package rewrite

import (
	"strings"
	"testing"
)

// noopWarn discards warnings; tests assert on return values instead.
func noopWarn(string, string) {}

func runTransform(t *testing.T, cfg *Config, input string) map[string][]Event {
	t.Helper()
	out, err := Transform(strings.NewReader(input), cfg, HCLEvaluator{}, noopWarn)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	return out
}

func textOf(t *testing.T, events []Event) string {
	t.Helper()
	var b strings.Builder
	for _, e := range events {
		if e.Kind == Text {
			b.Write(e.Data)
		}
	}
	return b.String()
}

// S1 — grouping by text.
func TestScenario_GroupingByText(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "dflt",
		ResidueGroup: "res",
		Grouping: GroupingTable{
			"root/item/kind": {"A": "ga", "B": "gb"},
		},
	}
	input := `<root><item><kind>A</kind><v>1</v></item><item><kind>B</kind><v>2</v></item><item><kind>C</kind><v>3</v></item></root>`
	out := runTransform(t, cfg, input)

	for _, g := range []string{"ga", "gb", "dflt"} {
		s := Serialize(out[g])
		if !strings.Contains(string(s), "<root>") || !strings.Contains(string(s), "</root>") {
			t.Errorf("group %q missing root framing: %s", g, s)
		}
	}
	if !strings.Contains(string(Serialize(out["ga"])), "<kind>A</kind>") {
		t.Errorf("group ga should contain kind A, got %s", Serialize(out["ga"]))
	}
	if !strings.Contains(string(Serialize(out["gb"])), "<kind>B</kind>") {
		t.Errorf("group gb should contain kind B, got %s", Serialize(out["gb"]))
	}
	if !strings.Contains(string(Serialize(out["dflt"])), "<kind>C</kind>") {
		t.Errorf("group dflt should contain kind C, got %s", Serialize(out["dflt"]))
	}
}

// S2 — residue via blocklist.
func TestScenario_ResidueViaBlocklist(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "dflt",
		ResidueGroup: "res",
		Filter: FilterTable{
			Block: PatternSet{Exact: map[string][]string{"root/item/kind": {"X"}}},
		},
		Grouping: GroupingTable{
			"root/item/kind": {"X": "shouldnotmatter"},
		},
	}
	input := `<root><item><kind>X</kind></item></root>`
	out := runTransform(t, cfg, input)

	if len(out["res"]) == 0 {
		t.Fatalf("expected residue group to receive the blocked item")
	}
	if len(out["shouldnotmatter"]) != 0 {
		t.Errorf("blocked item must not reach its grouped bucket, got %s", Serialize(out["shouldnotmatter"]))
	}
}

// S3 — elide a subtree via keep=false.
func TestScenario_Elide(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "default",
		ResidueGroup: "residue",
		Transformations: []Transformation{
			{Target: "root/item/secret", Keep: false},
		},
	}
	input := `<root><item><secret><pw>p</pw></secret><v>ok</v></item></root>`
	out := runTransform(t, cfg, input)

	got := string(Serialize(out["default"]))
	if strings.Contains(got, "secret") || strings.Contains(got, "pw") {
		t.Errorf("elided subtree leaked into output: %s", got)
	}
	if !strings.Contains(got, "<v>ok</v>") {
		t.Errorf("expected surviving sibling <v>ok</v>, got %s", got)
	}
}

// S4 — literal value rewrite.
func TestScenario_LiteralRewrite(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "default",
		ResidueGroup: "residue",
		Transformations: []Transformation{
			{Target: "root/item/v", Value: "X"},
		},
	}
	input := `<root><item><v>1</v></item></root>`
	out := runTransform(t, cfg, input)

	if got := string(Serialize(out["default"])); !strings.Contains(got, "<v>X</v>") {
		t.Errorf("expected literal rewrite to X, got %s", got)
	}
}

// S5 — expression with decimal_places.
func TestScenario_ExpressionDecimalPlaces(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "default",
		ResidueGroup: "residue",
		Transformations: []Transformation{
			{
				Target:     "root/item/v",
				Value:      "a*1.0",
				Datafields: map[string]string{"a": "root/item/v"},
				Parameters: map[string]string{"decimal_places": "2"},
			},
		},
	}
	input := `<root><item><v>3</v></item></root>`
	out := runTransform(t, cfg, input)

	if got := string(Serialize(out["default"])); !strings.Contains(got, "<v>3.00</v>") {
		t.Errorf("expected 3.00, got %s", got)
	}
}

// S6 — append wrap under precondition.
func TestScenario_AppendUnderPrecondition(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "default",
		ResidueGroup: "residue",
		Transformations: []Transformation{
			{
				Target:      "root/item",
				Value:       "yes",
				Nodes:       map[string]string{"append": "flag/on"},
				PreExisting: []string{"root/item/v"},
			},
		},
	}

	withV := runTransform(t, cfg, `<root><item><v>1</v></item></root>`)
	got := string(Serialize(withV["default"]))
	if !strings.Contains(got, "<flag><on>yes</on></flag>") {
		t.Errorf("expected appended flag/on, got %s", got)
	}
	idxEnd := strings.Index(got, "</item>")
	idxFlag := strings.Index(got, "<flag>")
	if idxEnd == -1 || idxFlag == -1 || idxFlag != idxEnd+len("</item>") {
		t.Errorf("expected flag to appear immediately after </item>, got %s", got)
	}

	withoutV := runTransform(t, cfg, `<root><item><other>1</other></item></root>`)
	got2 := string(Serialize(withoutV["default"]))
	if strings.Contains(got2, "<flag>") {
		t.Errorf("expected no appended flag without precondition, got %s", got2)
	}
}

// Invariant: path tracker is empty after Eof.
func TestInvariant_PathEmptyAfterEof(t *testing.T) {
	cfg := &Config{Element: "root/item", DefaultGroup: "default", ResidueGroup: "residue"}
	r := NewRewriter(cfg, HCLEvaluator{}, noopWarn)
	if _, err := r.Run(strings.NewReader(`<root><item><v>1</v></item></root>`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.path.Len() != 0 {
		t.Errorf("expected empty path after Eof, got depth %d", r.path.Len())
	}
}

// Invariant: each split-element instance reaches exactly one group buffer.
func TestInvariant_ExactlyOneGroupPerSplitElement(t *testing.T) {
	cfg := &Config{
		Element:      "root/item",
		DefaultGroup: "default",
		ResidueGroup: "residue",
		Grouping: GroupingTable{
			"root/item/kind": {"A": "ga"},
		},
	}
	out := runTransform(t, cfg, `<root><item><kind>A</kind></item></root>`)
	count := 0
	for g, events := range out {
		if g == "ga" {
			continue
		}
		for _, e := range events {
			if e.Kind == Start && e.Name == "item" {
				count++
			}
		}
	}
	if count != 0 {
		t.Errorf("split element leaked into %d non-destination groups", count)
	}
	if textOf(t, out["ga"]) != "A" {
		t.Errorf("expected ga to contain the item text, got %q", textOf(t, out["ga"]))
	}
}
