package nodes

import (
	"errors"
	"fmt"

	"github.com/slipstream/mango/pkg/flow"
)

// Node type names as they appear in persisted documents.
const (
	TypeStandardIn     = "standard-in"
	TypeStandardOut    = "standard-out"
	TypeLines          = "lines"
	TypeJSONParse      = "json-parse"
	TypeJSONStringify  = "json-stringify"
	TypeJSONKeys       = "json-keys"
	TypeJSONObject     = "json-object"
	TypeToInt          = "to-int"
	TypeSum            = "sum"
	TypeStringContains = "string-contains"
)

// Messages carried by the Error values nodes produce.
const (
	MsgNoInput            = "No input"
	MsgUnknownData        = "Unknown data"
	MsgInsufficientInputs = "Insufficient inputs"
	MsgIncorrectInputs    = "Incorrect inputs"
	MsgParseJSON          = "Failed to parse json"
	MsgStringifyJSON      = "Failed to stringify json"
	MsgReadStdin          = "Failed to read from stdin"
)

// NoSlot addresses the implicit input of single-input nodes.
const NoSlot = 0

var (
	// ErrMissingSlot is returned when a multi-input node is wired without a slot index.
	ErrMissingSlot = errors.New("missing input index")
	// ErrInvalidSlot is returned when the slot index does not exist on the node.
	ErrInvalidSlot = errors.New("invalid input index")
	// ErrUnknownField is returned by SetValue for fields the node does not expose.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldType is returned by SetValue when the value has the wrong kind.
	ErrFieldType = errors.New("wrong value type for field")
)

// Source resolves upstream node ids to their pulled output.
type Source interface {
	Pull(id int64) flow.Data
}

// Node is the capability set shared by every catalog entry.
type Node interface {
	ID() int64
	Type() string
	Pull(src Source) flow.Data
	// SetInput wires upstream into slot. A nil upstream clears the slot.
	SetInput(upstream Node, slot int) error
	// Input reports the upstream id wired into slot.
	Input(slot int) (int64, bool)
	Spec() Spec
	UI() UI
	Value(field string) flow.Data
	SetValue(field string, v flow.Data) error
}

// base carries identity and the no-field defaults.
type base struct {
	id  int64
	typ string
}

func (b *base) ID() int64 { return b.id }

func (b *base) Type() string { return b.typ }

func (b *base) UI() UI { return UI{} }

func (b *base) Value(string) flow.Data { return flow.None() }

func (b *base) SetValue(field string, _ flow.Data) error {
	return fmt.Errorf("%s %q: %w", b.typ, field, ErrUnknownField)
}

// single holds the one input of a single-input node. Slot indices are ignored.
type single struct {
	upstream int64
	wired    bool
}

func (s *single) SetInput(upstream Node, _ int) error {
	if upstream == nil {
		s.upstream, s.wired = 0, false
		return nil
	}
	s.upstream, s.wired = upstream.ID(), true
	return nil
}

func (s *single) Input(int) (int64, bool) {
	return s.upstream, s.wired
}

func (s *single) pullInput(src Source) flow.Data {
	if !s.wired {
		return flow.Error(MsgNoInput)
	}
	return src.Pull(s.upstream)
}

// expect forwards upstream errors verbatim, turns any other unexpected
// variant into MsgUnknownData and otherwise applies fn.
func expect(in flow.Data, want flow.Kind, fn func(flow.Data) flow.Data) flow.Data {
	if in.IsError() {
		return in
	}
	if in.Kind() != want {
		return flow.Error(MsgUnknownData)
	}
	return fn(in)
}

// describe builds the Spec of n, emitting every editable field.
func describe(n Node) Spec {
	spec := Spec{ID: n.ID(), Type: n.Type(), Attributes: []Attribute{}}
	for _, field := range n.UI().Fields {
		v := n.Value(field.Name)
		switch v.Kind() {
		case flow.KindString:
			s, _ := v.AsString()
			spec.Attributes = append(spec.Attributes, StringAttribute(field.Name, s))
		case flow.KindInt:
			i, _ := v.AsInt()
			spec.Attributes = append(spec.Attributes, IntAttribute(field.Name, i))
		}
	}
	return spec
}
