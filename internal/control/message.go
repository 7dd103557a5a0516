// Package control parses RFC822-style Debian control data.
//
// A control message is a sequence of "Field: value" lines where a value
// continues over any following lines that begin with whitespace. Field
// lookup is case-insensitive; field order and casing are preserved for
// serialization.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html
package control

import (
	"strings"

	"github.com/ralt/debinspect/internal/models"
)

type field struct {
	name  string
	value string
}

// Message is an ordered, case-insensitive field mapping parsed from a
// control blob. It is immutable after Parse.
type Message struct {
	fields []field
	index  map[string]int
}

// Parse builds a Message from a control blob. Parsing stops at the first
// blank line, which ends the paragraph.
func Parse(data []byte) (*Message, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, models.NewInspectError(models.ErrMalformedControl, "",
			"empty control data")
	}

	msg := &Message{index: make(map[string]int)}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			break
		}

		// Continuation lines fold into the previous value, keeping
		// their leading whitespace verbatim.
		if line[0] == ' ' || line[0] == '\t' {
			if len(msg.fields) == 0 {
				return nil, models.NewInspectError(models.ErrMalformedControl, "",
					"continuation line before any field: %q", line)
			}
			last := &msg.fields[len(msg.fields)-1]
			last.value += "\n" + line
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, models.NewInspectError(models.ErrMalformedControl, "",
				"line without field separator: %q", line)
		}

		key := strings.ToLower(name)
		if _, dup := msg.index[key]; !dup {
			msg.index[key] = len(msg.fields)
		}
		msg.fields = append(msg.fields, field{
			name:  name,
			value: strings.TrimPrefix(value, " "),
		})
	}

	if len(msg.fields) == 0 {
		return nil, models.NewInspectError(models.ErrMalformedControl, "",
			"no fields in control data")
	}
	return msg, nil
}

// Get returns the value of a field, looked up case-insensitively. The
// empty string is returned when the field is absent.
func (m *Message) Get(name string) string {
	if i, ok := m.index[strings.ToLower(name)]; ok {
		return m.fields[i].value
	}
	return ""
}

// Has reports whether a field is present, looked up case-insensitively.
func (m *Message) Has(name string) bool {
	_, ok := m.index[strings.ToLower(name)]
	return ok
}

// Fields returns the field names in encounter order with original casing.
func (m *Message) Fields() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.name
	}
	return names
}

// Len returns the number of fields.
func (m *Message) Len() int {
	return len(m.fields)
}

// String serializes the message back to control text, fields in encounter
// order, continuation lines reproduced exactly as folded.
func (m *Message) String() string {
	var b strings.Builder
	for _, f := range m.fields {
		first, rest, folded := strings.Cut(f.value, "\n")
		b.WriteString(f.name)
		b.WriteString(":")
		if first != "" {
			b.WriteString(" ")
			b.WriteString(first)
		}
		b.WriteString("\n")
		if folded {
			b.WriteString(rest)
			b.WriteString("\n")
		}
	}
	return b.String()
}
