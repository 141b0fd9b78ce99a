package rewrite

import (
	"bytes"
	"encoding/xml"
)

// Serialize renders an ordered event list back to well-formed XML bytes.
// There is no pretty-printing pass: whitespace is preserved only by events
// that explicitly carry it, and no re-indentation is attempted.
func Serialize(events []Event) []byte {
	var buf bytes.Buffer
	for _, e := range events {
		switch e.Kind {
		case Declaration:
			buf.WriteString("<?xml ")
			buf.Write(e.Data)
			buf.WriteString("?>")
		case Start:
			buf.WriteByte('<')
			buf.WriteString(e.Name)
			for _, a := range e.Attrs {
				buf.WriteByte(' ')
				buf.WriteString(a.Name)
				buf.WriteString(`="`)
				xml.EscapeText(&buf, []byte(a.Value))
				buf.WriteByte('"')
			}
			buf.WriteByte('>')
		case End:
			buf.WriteString("</")
			buf.WriteString(e.Name)
			buf.WriteByte('>')
		case Text, CData:
			xml.EscapeText(&buf, e.Data)
		case Comment:
			buf.WriteString("<!--")
			buf.Write(e.Data)
			buf.WriteString("-->")
		case ProcessingInstruction:
			buf.WriteString("<?")
			buf.Write(e.Data)
			buf.WriteString("?>")
		}
	}
	return buf.Bytes()
}
