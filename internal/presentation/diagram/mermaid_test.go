package diagram_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/presentation/diagram"
	"github.com/slipstream/mango/pkg/commands"
)

func TestGenerateMermaid(t *testing.T) {
	ed := mango.New()
	_, err := ed.AddNode("standard-in", "", 0, 0)
	require.NoError(t, err)
	keys, err := ed.Insert(commands.After, "lines")
	require.NoError(t, err)
	values, err := ed.AddNode("lines", `say "hi"`, 0, 100)
	require.NoError(t, err)
	obj, err := ed.AddNode("json-object", "", 300, 0)
	require.NoError(t, err)
	_, err = ed.AddNode("standard-out", "", 450, 0)
	require.NoError(t, err)
	require.NoError(t, ed.Connect(keys, obj, 1))
	require.NoError(t, ed.Connect(values, obj, 2))

	got := diagram.GenerateMermaid(ed.Graph(), nil)

	for _, want := range []string{
		"graph LR\n",
		`n1(("standard-in"))`,
		`n2["lines"]`,
		`n3["say 'hi' <br/> lines"]`,
		`n4[["json-object"]]`,
		`n5[/"standard-out"/]`,
		"n1 --> n2",
		`n2 -- "keys" --> n4`,
		`n3 -- "values" --> n4`,
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	ed := mango.New()
	a, err := ed.AddNode("sum", "", 0, 0)
	require.NoError(t, err)
	b, err := ed.AddNode("to-int", "", 0, 0)
	require.NoError(t, err)

	got := diagram.GenerateMermaid(ed.Graph(), &diagram.Overlay{
		Selected:    b,
		HasSelected: true,
		Failed:      []int64{a, a, 99},
	})

	assert.Equal(t, 1, strings.Count(got, "class n1 failed;"))
	assert.NotContains(t, got, "n99")
	assert.Contains(t, got, "class n2 selected;")
}
