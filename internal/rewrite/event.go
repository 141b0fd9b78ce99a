// Package rewrite implements the streaming XML rewriter: the state machine
// that walks an input event stream, maintains a current path, applies filter
// and transformation rules at that path, and routes output events into
// per-group buckets.
package rewrite

// Kind discriminates the variants of Event.
type Kind int

const (
	Declaration Kind = iota
	Start
	End
	Text
	CData
	Comment
	ProcessingInstruction
)

// Attr is a single XML attribute, preserved verbatim on Start events.
type Attr struct {
	Name  string
	Value string
}

// Event is a discriminated record mirroring the push-parser tokens the
// rewriter consumes and emits. Payloads are owned byte slices: once an event
// crosses into a buffer (pending or group), it no longer references the
// input reader's internal state.
type Event struct {
	Kind  Kind
	Name  string // Start, End
	Attrs []Attr // Start
	Data  []byte // Text, CData, Comment, ProcessingInstruction
}

// clone returns a deep copy of e so that buffered events never alias a
// reused decoder buffer.
func (e Event) clone() Event {
	out := e
	if e.Attrs != nil {
		out.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if e.Data != nil {
		out.Data = append([]byte(nil), e.Data...)
	}
	return out
}

func startEvent(name string, attrs []Attr) Event {
	return Event{Kind: Start, Name: name, Attrs: attrs}
}

func endEvent(name string) Event {
	return Event{Kind: End, Name: name}
}

func textEvent(data string) Event {
	return Event{Kind: Text, Data: []byte(data)}
}

// wrap produces the event sequence that embeds value inside the nested
// element chain described by a slash-separated path: Start(a), Start(b), ...,
// Text(value), End(..b), End(a). Used by the insert/append node directives.
func wrap(value string, path []string) []Event {
	out := make([]Event, 0, len(path)*2+1)
	for _, name := range path {
		out = append(out, startEvent(name, nil))
	}
	out = append(out, textEvent(value))
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, endEvent(path[i]))
	}
	return out
}
