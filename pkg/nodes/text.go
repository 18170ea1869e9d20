package nodes

import (
	"fmt"
	"strings"

	"github.com/slipstream/mango/pkg/flow"
)

// Lines splits a String into its lines.
type Lines struct {
	base
	single
}

// NewLines creates a Lines node.
func NewLines(id int64) *Lines {
	return &Lines{base: base{id: id, typ: TypeLines}}
}

func (n *Lines) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindString, func(in flow.Data) flow.Data {
		text, _ := in.AsString()
		return flow.StringArray(splitLines(text))
	})
}

func (n *Lines) Spec() Spec { return describe(n) }

// splitLines breaks on \n, drops a trailing \r per line and does not yield
// an empty final line for text ending in a newline.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

// StringContains keeps the strings that contain Value verbatim.
type StringContains struct {
	base
	single
	value string
}

const fieldValue = "value"

// NewStringContains creates a StringContains filtering on value.
func NewStringContains(id int64, value string) *StringContains {
	return &StringContains{base: base{id: id, typ: TypeStringContains}, value: value}
}

func (n *StringContains) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindStringArray, func(in flow.Data) flow.Data {
		lines, _ := in.AsStringArray()
		out := []string{}
		for _, line := range lines {
			if strings.Contains(line, n.value) {
				out = append(out, line)
			}
		}
		return flow.StringArray(out)
	})
}

func (n *StringContains) Spec() Spec { return describe(n) }

func (n *StringContains) UI() UI {
	return UI{Fields: []Field{{Label: "Value", Name: fieldValue, Kind: FieldString}}}
}

func (n *StringContains) Value(field string) flow.Data {
	if field != fieldValue {
		return flow.None()
	}
	return flow.String(n.value)
}

func (n *StringContains) SetValue(field string, v flow.Data) error {
	if field != fieldValue {
		return fmt.Errorf("%s %q: %w", n.typ, field, ErrUnknownField)
	}
	s, ok := v.AsString()
	if !ok {
		return fmt.Errorf("%s %q got %s: %w", n.typ, field, v.Kind(), ErrFieldType)
	}
	n.value = s
	return nil
}
