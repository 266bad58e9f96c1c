package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		cacheRequests,
		catalogFallbacks,
		notificationsTotal,
	)
}

var (
	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by cache name and result (hit/miss).",
		},
		[]string{"cache", "result"},
	)

	catalogFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_catalog_fallbacks_total",
			Help: "Quotes served from stale cache or the default table because the catalog source failed.",
		},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by outcome (delivered/failed).",
		},
		[]string{"outcome"},
	)
)

func IncCacheRequest(cache, result string) {
	cacheRequests.WithLabelValues(norm(cache), norm(result)).Inc()
}

func IncCatalogFallback() {
	catalogFallbacks.Inc()
}

func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(norm(outcome)).Inc()
}
