package observability

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thicket"

// Metrics records selection activity per tree.
type Metrics struct {
	toggles    *prometheus.CounterVec
	expansions *prometheus.CounterVec
	clears     *prometheus.CounterVec
	resets     *prometheus.CounterVec
	ignored    *prometheus.CounterVec
	affected   *prometheus.HistogramVec
	selection  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "toggles_total",
				Help:      "Total number of committed checkbox changes",
			},
			[]string{"tree_id", "checked"},
		),
		expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_total",
				Help:      "Total number of expansion flips",
			},
			[]string{"tree_id"},
		),
		clears: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clears_total",
				Help:      "Total number of cleared selections",
			},
			[]string{"tree_id"},
		),
		resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resets_total",
				Help:      "Total number of sessions started or reset",
			},
			[]string{"tree_id"},
		),
		ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ignored_total",
				Help:      "Total number of operations dropped by policy",
			},
			[]string{"tree_id", "reason"},
		),
		affected: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "toggle_affected_items",
				Help:      "Number of items whose flags changed per toggle",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
			[]string{"tree_id"},
		),
		selection: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "selection_size",
				Help:      "Size of the most recently changed selection",
			},
			[]string{"tree_id"},
		),
	}

	if reg == nil {
		return m, nil
	}
	// A second Metrics on the same registry shares the collectors already
	// registered there.
	var err error
	if m.toggles, err = register(reg, m.toggles); err != nil {
		return nil, err
	}
	if m.expansions, err = register(reg, m.expansions); err != nil {
		return nil, err
	}
	if m.clears, err = register(reg, m.clears); err != nil {
		return nil, err
	}
	if m.resets, err = register(reg, m.resets); err != nil {
		return nil, err
	}
	if m.ignored, err = register(reg, m.ignored); err != nil {
		return nil, err
	}
	if m.affected, err = register(reg, m.affected); err != nil {
		return nil, err
	}
	if m.selection, err = register(reg, m.selection); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnToggle: func(_ context.Context, e *domain.ToggleEvent) {
			m.toggles.WithLabelValues(e.TreeID, strconv.FormatBool(e.Checked)).Inc()
			m.affected.WithLabelValues(e.TreeID).Observe(float64(e.Affected))
		},
		OnExpand: func(_ context.Context, e *domain.ExpandEvent) {
			m.expansions.WithLabelValues(e.TreeID).Inc()
		},
		OnClear: func(_ context.Context, e *domain.ClearEvent) {
			m.clears.WithLabelValues(e.TreeID).Inc()
		},
		OnReset: func(_ context.Context, e *domain.ResetEvent) {
			m.resets.WithLabelValues(e.TreeID).Inc()
		},
		OnSelectionChange: func(_ context.Context, e *domain.SelectionEvent) {
			m.selection.WithLabelValues(e.TreeID).Set(float64(len(e.Selected)))
		},
		OnIgnored: func(_ context.Context, e *domain.IgnoredEvent) {
			m.ignored.WithLabelValues(e.TreeID, e.Reason).Inc()
		},
	}
}
