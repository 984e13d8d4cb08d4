package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Active websocket connections",
	})
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Messages persisted via the send endpoint",
	})
	MessagesPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_pushed_total",
		Help: "Messages pushed to a live recipient connection",
	})
	PresenceBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_presence_broadcasts_total",
		Help: "Full online-set broadcasts",
	})
)

func Init() {
	prometheus.MustRegister(ActiveConnections, MessagesSent, MessagesPushed, PresenceBroadcasts)
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
