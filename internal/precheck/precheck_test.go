package precheck

import (
	"testing"

	"github.com/tbielander/xtract/internal/rewriteconfig"
)

func TestCheck_AllowBlockConflict(t *testing.T) {
	cfg := &rewriteconfig.Config{
		Filter: rewriteconfig.Filter{
			Allowlist: map[string][]string{"root/item/kind": {"A"}},
			Blocklist: map[string][]string{"root/item/kind": {"B"}},
		},
	}
	r := Check(cfg)
	if r.Empty() {
		t.Fatalf("expected a conflict to be reported")
	}
	if len(r.AllowBlockConflict) != 1 || r.AllowBlockConflict[0] != "root/item/kind" {
		t.Errorf("got %v, want [root/item/kind]", r.AllowBlockConflict)
	}
}

func TestCheck_SplittingWithoutAllowance(t *testing.T) {
	cfg := &rewriteconfig.Config{
		Split: rewriteconfig.Split{
			Grouping: map[string]map[string]string{
				"root/item/kind": {"A": "ga", "B": "gb"},
			},
		},
		Filter: rewriteconfig.Filter{
			Allowlist: map[string][]string{"root/item/kind": {"A"}},
		},
	}
	r := Check(cfg)
	if len(r.SplittingWithoutAllowance) != 1 {
		t.Fatalf("expected one finding, got %v", r.SplittingWithoutAllowance)
	}
	f := r.SplittingWithoutAllowance[0]
	if f.Path != "root/item/kind" || len(f.Values) != 1 || f.Values[0] != "B" {
		t.Errorf("got %+v, want path root/item/kind with value B", f)
	}
}

func TestCheck_SplittingDespiteBlocking(t *testing.T) {
	cfg := &rewriteconfig.Config{
		Split: rewriteconfig.Split{
			Grouping: map[string]map[string]string{
				"root/item/kind": {"A": "ga"},
			},
		},
		Filter: rewriteconfig.Filter{
			Blocklist: map[string][]string{"root/item/kind": {"A"}},
		},
	}
	r := Check(cfg)
	if len(r.SplittingDespiteBlocking) != 1 {
		t.Fatalf("expected one finding, got %v", r.SplittingDespiteBlocking)
	}
}

func TestCheck_Clean(t *testing.T) {
	cfg := &rewriteconfig.Config{
		Split: rewriteconfig.Split{
			Grouping: map[string]map[string]string{
				"root/item/kind": {"A": "ga"},
			},
		},
		Filter: rewriteconfig.Filter{
			Allowlist: map[string][]string{"root/item/kind": {"A"}},
		},
	}
	if r := Check(cfg); !r.Empty() {
		t.Errorf("expected no findings, got %+v", r)
	}
}
