/*
Package monitoring provides Prometheus metrics for the metrology service.

It tracks HTTP traffic, tool executions (count, latency, failure class) and
the size of the series/budget workspace.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "uncertainty", "uncertainty.propagate")
	// ... execute ...
	timer.Stop("success")
*/
package monitoring
