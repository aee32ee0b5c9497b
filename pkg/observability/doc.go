/*
Package observability provides lifecycle hooks that turn selection events into
Prometheus metrics and structured log records.

Both hook sets are plain domain.LifecycleHooks values, so they can be chained
with application hooks:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
	tree, _ := thicket.New(items, thicket.WithLifecycleHooks(hooks))
*/
package observability
