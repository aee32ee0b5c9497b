package observability_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pantry = []domain.Item{
	{ID: "fruits", Label: "Fruits", Children: []domain.Item{
		{ID: "apple", Label: "Apple"},
		{ID: "pear", Label: "Pear"},
	}},
	{ID: "bread", Label: "Bread", Disabled: true},
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	tr, err := thicket.New(pantry,
		thicket.WithTreeID("pantry"),
		thicket.WithExpandable(true),
		thicket.WithLifecycleHooks(m.Hooks()),
	)
	require.NoError(t, err)

	tr.SetChecked("fruits", true)
	tr.SetChecked("bread", true)
	tr.SetChecked("ghost", true)
	tr.ToggleExpansion("fruits")

	assertSeries(t, reg, "thicket_resets_total", 1)
	assertSeries(t, reg, "thicket_toggles_total", 1)
	assertSeries(t, reg, "thicket_ignored_total", 2)
	assertSeries(t, reg, "thicket_expansions_total", 1)
	assertSeries(t, reg, "thicket_toggle_affected_items", 1)

	expected := `
# HELP thicket_selection_size Size of the most recently changed selection
# TYPE thicket_selection_size gauge
thicket_selection_size{tree_id="pantry"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "thicket_selection_size"))

	tr.ClearAll()
	expected = `
# HELP thicket_clears_total Total number of cleared selections
# TYPE thicket_clears_total counter
thicket_clears_total{tree_id="pantry"} 1
# HELP thicket_selection_size Size of the most recently changed selection
# TYPE thicket_selection_size gauge
thicket_selection_size{tree_id="pantry"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "thicket_clears_total", "thicket_selection_size"))
}

func TestMetrics_IgnoredReasons(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	tr, err := thicket.New(pantry, thicket.WithTreeID("pantry"), thicket.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	tr.SetChecked("apple", true)
	tr.SetChecked("bread", true)
	tr.ToggleExpansion("fruits")

	expected := `
# HELP thicket_ignored_total Total number of operations dropped by policy
# TYPE thicket_ignored_total counter
thicket_ignored_total{reason="disabled",tree_id="pantry"} 1
thicket_ignored_total{reason="not_expandable",tree_id="pantry"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "thicket_ignored_total"))

	expected = `
# HELP thicket_toggles_total Total number of committed checkbox changes
# TYPE thicket_toggles_total counter
thicket_toggles_total{checked="true",tree_id="pantry"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "thicket_toggles_total"))
}

func TestNewMetrics_RegisterTwiceSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	tr, err := thicket.New(pantry,
		thicket.WithTreeID("pantry"),
		thicket.WithLifecycleHooks(second.Hooks()),
	)
	require.NoError(t, err)
	tr.SetChecked("apple", true)

	count, err := testutil.GatherAndCount(reg, "thicket_toggles_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "the second instance feeds the registered collectors")

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Hooks().OnToggle)
}

func TestNewMetrics_ConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "thicket",
		Name:      "toggles_total",
		Help:      "Something else",
	}))

	_, err := observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.ParseLevel("debug"))

	tr, err := thicket.New(pantry, thicket.WithTreeID("pantry"), thicket.WithLifecycleHooks(observability.LogHooks(logger)))
	require.NoError(t, err)

	tr.SetChecked("apple", true)
	tr.SetChecked("bread", true)

	out := buf.String()
	assert.Contains(t, out, "session reset")
	assert.Contains(t, out, "item toggled")
	assert.Contains(t, out, "item_id=apple")
	assert.Contains(t, out, "operation ignored")
	assert.Contains(t, out, "reason=disabled")
}

func assertSeries(t *testing.T, reg *prometheus.Registry, name string, want int) {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	assert.Equal(t, want, n, name)
}
