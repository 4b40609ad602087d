package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Per-channel delivery outcomes.",
	}, []string{"channel", "status"})

	deliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_delivery_duration_seconds",
		Help:    "Time spent rendering and handing off one delivery unit.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})

	unknownKeysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_unknown_keys_total",
		Help: "Dispatches that named an unregistered notification key.",
	})
)
