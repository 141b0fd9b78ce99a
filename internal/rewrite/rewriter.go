package rewrite

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Rewriter is the streaming XML state machine. It consumes input events,
// applies the path tracker, rule compiler, filter evaluator and group
// selector, and routes output events into per-group buffers.
type Rewriter struct {
	cfg  *Config
	eval Evaluator
	warn WarnFunc

	splitPath []string
	filter    compiledFilterTable

	path         Path
	pending      []Event
	include      bool
	keep         bool
	group        *groupSelector
	groupBuffers map[string][]Event
	transformers []*Transformer
}

// NewRewriter compiles cfg's filter table and transformation list and
// returns a Rewriter ready to process one input stream. cfg must not be
// mutated afterward — configuration is immutable once loaded.
func NewRewriter(cfg *Config, eval Evaluator, warn WarnFunc) *Rewriter {
	if warn == nil {
		warn = func(string, string) {}
	}
	r := &Rewriter{
		cfg:       cfg,
		eval:      eval,
		warn:      warn,
		splitPath: splitPath(cfg.Element),
		filter:    compileFilterTable(cfg.Filter, warn),
		include:   true,
		keep:      true,
		group:     newGroupSelector(cfg.Grouping, cfg.DefaultGroup),
	}
	r.transformers = compileTransformers(cfg.Transformations, r.splitPath)
	r.groupBuffers = make(map[string][]Event)
	for _, g := range cfg.groupUniverse() {
		r.groupBuffers[g] = nil
	}
	return r
}

// Run streams reader's XML events through the rewriter and returns the
// populated group buffers. A decoder-level error logs and stops the loop,
// returning whatever was accumulated so far; an expression evaluation
// failure is fatal and is returned as an error instead.
func (r *Rewriter) Run(reader io.Reader) (out map[string][]Event, err error) {
	defer func() {
		if p := recover(); p != nil {
			ep, ok := p.(evaluationPanic)
			if !ok {
				panic(p)
			}
			err = fmt.Errorf("%w: %v", ErrEvaluationFailed, ep.err)
			out = r.groupBuffers
		}
	}()

	dec := xml.NewDecoder(reader)
	for {
		tok, tokErr := dec.Token()
		if tokErr == io.EOF {
			break
		}
		if tokErr != nil {
			r.warn("reading_xml_event_failed", tokErr.Error())
			break
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				r.handleDeclaration(t.Inst)
			} else {
				r.handleVerbatim(ProcessingInstruction, []byte(t.Target+" "+string(t.Inst)))
			}
		case xml.StartElement:
			r.handleStart(t.Name.Local, convertAttrs(t.Attr))
		case xml.EndElement:
			r.handleEnd(t.Name.Local)
		case xml.CharData:
			r.handleText(string(t))
		case xml.Comment:
			r.handleVerbatim(Comment, []byte(t))
		case xml.Directive:
			r.handleVerbatim(ProcessingInstruction, []byte(t))
		}
	}

	return r.groupBuffers, nil
}

func convertAttrs(attrs []xml.Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		out[i] = Attr{Name: a.Name.Local, Value: a.Value}
	}
	return out
}

func (r *Rewriter) broadcast(e Event) {
	for group := range r.groupBuffers {
		r.groupBuffers[group] = append(r.groupBuffers[group], e.clone())
	}
}

func (r *Rewriter) isAboveSplit() bool {
	return r.path.IsAboveSplit(r.splitPath)
}

func (r *Rewriter) handleDeclaration(inst []byte) {
	if !r.cfg.PropagateDeclaration {
		return
	}
	r.broadcast(Event{Kind: Declaration, Data: inst})
}

func (r *Rewriter) handleVerbatim(kind Kind, data []byte) {
	if !r.keep {
		return
	}
	e := Event{Kind: kind, Data: data}
	if r.isAboveSplit() {
		r.broadcast(e)
	} else {
		r.pending = append(r.pending, e.clone())
	}
}

func (r *Rewriter) handleStart(name string, attrs []Attr) {
	r.path.Push(name)
	currentPath := r.path.String()

	for _, t := range r.transformers {
		t.markMissingSeen(currentPath)
		t.markExistingSeen(currentPath)
		if t.rule.Target == currentPath && !t.rule.Keep {
			r.keep = false
		}
	}
	if !r.keep {
		return
	}

	if r.isAboveSplit() {
		r.broadcast(startEvent(name, attrs))
		return
	}

	r.pending = append(r.pending, startEvent(name, attrs))
	if r.path.Equal(r.splitPath) {
		r.include = true
		r.group.enterSplitElement()
		for _, t := range r.transformers {
			if t.insideSplit {
				t.reset()
			}
		}
	}
}

func (r *Rewriter) handleText(data string) {
	if isOnlyNewlines(data) {
		return
	}
	if !r.keep {
		return
	}
	currentPath := r.path.String()

	r.group.observe(currentPath, data)
	if r.filter.rejects(currentPath, data) {
		r.include = false
	}

	if r.isAboveSplit() {
		r.broadcast(textEvent(data))
		return
	}

	r.pending = append(r.pending, textEvent(data))
	textIdx := len(r.pending) - 1

	for _, t := range r.transformers {
		t.checkValue(currentPath, data, r.eval, r.warn)
		t.recomputePrecondition()
		if t.rule.Target == currentPath && len(t.rule.Nodes) == 0 && t.precondition {
			r.pending[textIdx] = textEvent(t.valueTransformed)
		}
	}
}

// isOnlyNewlines reports whether s consists solely of '\n'/'\r' characters.
func isOnlyNewlines(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "\n\r") == ""
}

func (r *Rewriter) handleEnd(name string) {
	currentPath := r.path.String()

	if !r.keep {
		for _, t := range r.transformers {
			if t.rule.Target == currentPath {
				r.keep = true
			}
		}
		r.path.Pop()
		return
	}

	if r.isAboveSplit() {
		r.broadcast(endEvent(name))
		r.path.Pop()
		return
	}

	for _, t := range r.transformers {
		if t.rule.Target != currentPath || t.nodesInsert == nil {
			continue
		}
		t.recomputePrecondition()
		if t.precondition {
			r.pending = append(r.pending, wrap(t.valueTransformed, t.nodesInsert)...)
		}
	}

	r.pending = append(r.pending, endEvent(name))

	for _, t := range r.transformers {
		if t.rule.Target != currentPath {
			continue
		}
		if t.nodesAppend != nil {
			t.recomputePrecondition()
			if t.precondition {
				r.pending = append(r.pending, wrap(t.valueTransformed, t.nodesAppend)...)
			}
		}
		t.resetPreconditionsToInitial()
	}

	if r.path.Equal(r.splitPath) {
		group := r.group.current
		if !r.include {
			group = r.cfg.ResidueGroup
		}
		r.groupBuffers[group] = append(r.groupBuffers[group], r.pending...)
		r.pending = nil
	}

	r.path.Pop()
}
