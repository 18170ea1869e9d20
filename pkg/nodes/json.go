package nodes

import (
	"fmt"

	"github.com/slipstream/mango/pkg/flow"
)

// JSONParse turns a String into a Json value.
type JSONParse struct {
	base
	single
}

// NewJSONParse creates a JSONParse node.
func NewJSONParse(id int64) *JSONParse {
	return &JSONParse{base: base{id: id, typ: TypeJSONParse}}
}

func (n *JSONParse) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindString, func(in flow.Data) flow.Data {
		text, _ := in.AsString()
		v, err := flow.ParseJSON([]byte(text))
		if err != nil {
			return flow.Error(MsgParseJSON)
		}
		return flow.JSON(v)
	})
}

func (n *JSONParse) Spec() Spec { return describe(n) }

// JSONStringify serializes a Json value into a String.
type JSONStringify struct {
	base
	single
}

// NewJSONStringify creates a JSONStringify node.
func NewJSONStringify(id int64) *JSONStringify {
	return &JSONStringify{base: base{id: id, typ: TypeJSONStringify}}
}

func (n *JSONStringify) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindJSON, func(in flow.Data) flow.Data {
		v, _ := in.AsJSON()
		text, err := flow.StringifyJSON(v)
		if err != nil {
			return flow.Error(MsgStringifyJSON)
		}
		return flow.String(text)
	})
}

func (n *JSONStringify) Spec() Spec { return describe(n) }

// JSONKeys lists the keys of a Json object. Non-object values have no keys.
type JSONKeys struct {
	base
	single
}

// NewJSONKeys creates a JSONKeys node.
func NewJSONKeys(id int64) *JSONKeys {
	return &JSONKeys{base: base{id: id, typ: TypeJSONKeys}}
}

func (n *JSONKeys) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindJSON, func(in flow.Data) flow.Data {
		v, _ := in.AsJSON()
		return flow.StringArray(flow.Keys(v))
	})
}

func (n *JSONKeys) Spec() Spec { return describe(n) }

// Input slots of JSONObject.
const (
	SlotKeys   = 1
	SlotValues = 2
)

// JSONObject zips a StringArray of keys with a StringArray of values.
type JSONObject struct {
	base
	keys   single
	values single
}

// NewJSONObject creates a JSONObject node.
func NewJSONObject(id int64) *JSONObject {
	return &JSONObject{base: base{id: id, typ: TypeJSONObject}}
}

func (n *JSONObject) Pull(src Source) flow.Data {
	if !n.keys.wired || !n.values.wired {
		return flow.Error(MsgInsufficientInputs)
	}
	keysIn := n.keys.pullInput(src)
	valuesIn := n.values.pullInput(src)
	if keysIn.IsError() {
		return keysIn
	}
	if valuesIn.IsError() {
		return valuesIn
	}
	keys, okKeys := keysIn.AsStringArray()
	values, okValues := valuesIn.AsStringArray()
	if !okKeys || !okValues {
		return flow.Error(MsgIncorrectInputs)
	}
	obj := flow.NewObject()
	for i := 0; i < len(keys) && i < len(values); i++ {
		obj.Set(keys[i], values[i])
	}
	return flow.JSON(obj)
}

func (n *JSONObject) SetInput(upstream Node, slot int) error {
	switch slot {
	case SlotKeys:
		return n.keys.SetInput(upstream, slot)
	case SlotValues:
		return n.values.SetInput(upstream, slot)
	case NoSlot:
		return fmt.Errorf("%s %d: %w", n.typ, n.id, ErrMissingSlot)
	default:
		return fmt.Errorf("%s %d slot %d: %w", n.typ, n.id, slot, ErrInvalidSlot)
	}
}

func (n *JSONObject) Input(slot int) (int64, bool) {
	switch slot {
	case SlotKeys:
		return n.keys.Input(slot)
	case SlotValues:
		return n.values.Input(slot)
	default:
		return 0, false
	}
}

func (n *JSONObject) Spec() Spec { return describe(n) }
