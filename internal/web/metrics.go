package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_queries_total",
		Help: "The total number of catalog queries served",
	}, []string{"catalog"})
	noResultQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_no_result_queries_total",
		Help: "Catalog queries that matched nothing",
	}, []string{"catalog"})
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_query_duration_seconds",
		Help:    "Time spent filtering and paginating a catalog",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	}, []string{"catalog"})
	suggestCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_suggestions_total",
		Help: "The total number of typeahead requests",
	})
	backdropStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_backdrop_streams",
		Help: "Backdrop frame streams currently open",
	})
)
