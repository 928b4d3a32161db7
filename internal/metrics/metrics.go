package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OnlineConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_conns",
		Help: "Current registered websocket connections.",
	})

	MessagesPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_persisted_total",
		Help: "Total direct messages written to the store.",
	})
	PushDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_delivered_total",
		Help: "Total messages pushed to an online recipient.",
	})
	PushOffline = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_push_offline_total",
		Help: "Total messages persisted while the recipient was offline.",
	})
	SendFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_send_failed_total",
		Help: "Total send attempts rejected or failed before delivery.",
	})
)

func Register() {
	prometheus.MustRegister(
		OnlineConns,
		MessagesPersisted,
		PushDelivered,
		PushOffline,
		SendFailed,
	)
}
