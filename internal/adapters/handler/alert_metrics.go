package handler

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AlertsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_consumed_total",
			Help: "Total number of pregnancy alerts consumed from RabbitMQ",
		},
		[]string{"status"},
	)

	AlertsBroadcastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_broadcast_total",
			Help: "Total number of alerts broadcast via WebSocket, by recipient count",
		},
		[]string{"recipients"},
	)

	WebSocketConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of WebSocket connections",
		},
		[]string{"role"},
	)

	RabbitMQConsumeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rabbitmq_consume_duration_seconds",
			Help:    "Duration of RabbitMQ message consumption",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)

// RegisterAlertConsumerMetrics registers all alert-consumer metrics on reg
func RegisterAlertConsumerMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AlertsConsumedTotal, AlertsBroadcastTotal, WebSocketConnections, RabbitMQConsumeDuration)
}

// ObserveAlertConsumed records one consumed alert; it matches the consumer's observer hook
func ObserveAlertConsumed(status string, elapsed time.Duration) {
	AlertsConsumedTotal.WithLabelValues(status).Inc()
	RabbitMQConsumeDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveBroadcast records one hub broadcast
func ObserveBroadcast(recipients int) {
	label := strconv.Itoa(recipients)
	if recipients > 10 {
		label = "10+"
	}
	AlertsBroadcastTotal.WithLabelValues(label).Inc()
}
