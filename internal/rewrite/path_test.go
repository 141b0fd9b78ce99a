package rewrite

import "testing"

func TestPath_PushPopEqual(t *testing.T) {
	var p Path
	p.Push("root")
	p.Push("item")
	if got, want := p.String(), "root/item"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if !p.Equal([]string{"root", "item"}) {
		t.Fatalf("expected Equal to match root/item")
	}
	p.Pop()
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	p.Pop()
	p.Pop() // popping past empty must not panic
	if p.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", p.Len())
	}
}

func TestIsAbove(t *testing.T) {
	split := []string{"root", "item"}
	tests := []struct {
		name    string
		current []string
		want    bool
	}{
		{"strict ancestor", []string{"root"}, true},
		{"exact match", []string{"root", "item"}, false},
		{"descendant", []string{"root", "item", "v"}, false},
		{"unrelated sibling", []string{"root", "other"}, true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAbove(tt.current, split); got != tt.want {
				t.Errorf("isAbove(%v, %v) = %v, want %v", tt.current, split, got, tt.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	if got := splitPath(""); got != nil {
		t.Errorf("splitPath(\"\") = %v, want nil", got)
	}
	got := splitPath("root/item/v")
	want := []string{"root", "item", "v"}
	if len(got) != len(want) {
		t.Fatalf("splitPath length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}
