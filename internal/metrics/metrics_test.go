package metrics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mango/internal/metrics"
	"github.com/slipstream/mango/pkg/flow"
	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
	"github.com/slipstream/mango/pkg/registry"
)

func TestObservePull(t *testing.T) {
	m := metrics.New(nil)
	m.ObservePull(nodes.TypeSum, flow.Int(3))
	m.ObservePull(nodes.TypeSum, flow.Error("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pulls.WithLabelValues(nodes.TypeSum)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PullErrors.WithLabelValues(nodes.TypeSum)))
}

func TestObserveCommand(t *testing.T) {
	m := metrics.New(nil)
	m.ObserveCommand("connect", nil)
	m.ObserveCommand("connect", errors.New("boom"))
	m.ObserveCommand("connect", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("connect", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("connect", "error")))
}

func TestRegistryObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := registry.New(
		registry.WithObserver(m),
		registry.WithStdin(strings.NewReader("1\n2\n")),
	)
	g := graph.New(r)
	for _, typ := range []string{nodes.TypeStandardIn, nodes.TypeLines, nodes.TypeSum} {
		n, err := r.MustBuild(g.NextID(), typ)
		require.NoError(t, err)
		require.NoError(t, g.InsertNode(n))
	}
	require.NoError(t, g.Wire(graph.Connection{From: 1, To: 2}))
	require.NoError(t, g.Wire(graph.Connection{From: 2, To: 3}))

	assert.Equal(t, flow.Error(nodes.MsgUnknownData), g.Pull(3))

	expected := `
# HELP mango_pull_errors_total Node pulls that produced an Error value
# TYPE mango_pull_errors_total counter
mango_pull_errors_total{type="sum"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mango_pull_errors_total"))
	assert.Equal(t, 3, testutil.CollectAndCount(m.Pulls))
}
