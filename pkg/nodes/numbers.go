package nodes

import (
	"strconv"

	"github.com/slipstream/mango/pkg/flow"
)

// ToInt parses every string of a StringArray, dropping entries that are not integers.
type ToInt struct {
	base
	single
}

// NewToInt creates a ToInt node.
func NewToInt(id int64) *ToInt {
	return &ToInt{base: base{id: id, typ: TypeToInt}}
}

func (n *ToInt) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindStringArray, func(in flow.Data) flow.Data {
		lines, _ := in.AsStringArray()
		out := []int64{}
		for _, line := range lines {
			if v, err := strconv.ParseInt(line, 10, 64); err == nil {
				out = append(out, v)
			}
		}
		return flow.IntArray(out)
	})
}

func (n *ToInt) Spec() Spec { return describe(n) }

// Sum adds up an IntArray.
type Sum struct {
	base
	single
}

// NewSum creates a Sum node.
func NewSum(id int64) *Sum {
	return &Sum{base: base{id: id, typ: TypeSum}}
}

func (n *Sum) Pull(src Source) flow.Data {
	return expect(n.pullInput(src), flow.KindIntArray, func(in flow.Data) flow.Data {
		values, _ := in.AsIntArray()
		var total int64
		for _, v := range values {
			total += v
		}
		return flow.Int(total)
	})
}

func (n *Sum) Spec() Spec { return describe(n) }
