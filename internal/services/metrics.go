package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wabridge_sends_total",
		Help: "Outbound send attempts by result",
	}, []string{"result"})

	reconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabridge_reconnect_attempts_total",
		Help: "Reconnect attempts scheduled after retryable disconnects",
	})

	connectionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wabridge_connection_events_total",
		Help: "Connection lifecycle events by type",
	}, []string{"event"})

	connectedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wabridge_connected",
		Help: "1 while the session is connected, 0 otherwise",
	})
)
