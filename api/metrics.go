package api

import (
	"regexp"
	"sync"
	"time"
)

// RouteMetrics aggregates request counts and timings for one route.
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector keeps in-memory per-route counters. Metrics are
// best-effort; nothing here may block or fail a request.
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	startedAt     time.Time
	totalRequests int64
	totalErrors   int64
}

var globalMetrics *MetricsCollector
var metricsOnce sync.Once

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			routeMetrics: make(map[string]*RouteMetrics),
			startedAt:    time.Now(),
		}
	})
	return globalMetrics
}

// Record folds one completed request into the per-route counters.
func (mc *MetricsCollector) Record(method, path string, status int, duration time.Duration) {
	routeKey := method + " " + normalizeRoutePath(path)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  method,
			Path:    normalizeRoutePath(path),
			MinTime: duration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += duration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = time.Now()
	if duration < metrics.MinTime {
		metrics.MinTime = duration
	}
	if duration > metrics.MaxTime {
		metrics.MaxTime = duration
	}

	mc.totalRequests++
	if status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
}

// GetRouteMetrics returns a copy of the aggregated metrics for all routes.
func (mc *MetricsCollector) GetRouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics, len(mc.routeMetrics))
	for k, v := range mc.routeMetrics {
		metrics := *v
		result[k] = &metrics
	}
	return result
}

// GetSummary returns overall counters since startup.
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"routeCount":    len(mc.routeMetrics),
		"startedAt":     mc.startedAt,
		"uptime":        time.Since(mc.startedAt).String(),
	}
}

var (
	objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	tokenPattern    = regexp.MustCompile(`/[0-9a-fA-F]{64}(/|$)`)
)

// normalizeRoutePath collapses dynamic path segments so requests group by
// route instead of by individual id or token.
func normalizeRoutePath(path string) string {
	path = tokenPattern.ReplaceAllString(path, "/{token}$1")
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
