package rewrite

// groupSelector implements the group selector: at a text
// event, assign the containing split-element to a group name based on the
// grouping table, defaulting to DefaultGroup and retaining its last value
// outside any grouping-path text.
type groupSelector struct {
	table        GroupingTable
	defaultGroup string
	current      string
}

func newGroupSelector(table GroupingTable, defaultGroup string) *groupSelector {
	return &groupSelector{table: table, defaultGroup: defaultGroup, current: defaultGroup}
}

// enterSplitElement resets the current group to the default, as happens on
// every split-element entry.
func (g *groupSelector) enterSplitElement() {
	g.current = g.defaultGroup
}

// observe updates the current group selection from a text event at path, if
// path is a grouping key. Paths outside the grouping table leave the
// current selection untouched.
func (g *groupSelector) observe(path, text string) {
	byText, ok := g.table[path]
	if !ok {
		return
	}
	if group, mapped := byText[text]; mapped {
		g.current = group
	} else {
		g.current = g.defaultGroup
	}
}
