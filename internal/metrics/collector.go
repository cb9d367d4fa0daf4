package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// sessionCollector turns device.Stats snapshots into const metrics at
// scrape time.
type sessionCollector struct {
	sources []StatsSource

	connected         *prometheus.Desc
	framesRx          *prometheus.Desc
	framesTx          *prometheus.Desc
	messagesRx        *prometheus.Desc
	messagesTx        *prometheus.Desc
	pingsSent         *prometheus.Desc
	connects          *prometheus.Desc
	reconnects        *prometheus.Desc
	handshakeFailures *prometheus.Desc
	lastActivity      *prometheus.Desc
}

func newSessionCollector(cfg Config, sources []StatsSource) *sessionCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(cfg.Namespace, "session", name), help,
			[]string{"address"}, cfg.ConstLabels)
	}
	return &sessionCollector{
		sources:           sources,
		connected:         desc("connected", "1 while the session is connected"),
		framesRx:          desc("frames_received_total", "Frames read from the socket"),
		framesTx:          desc("frames_sent_total", "Frames written to the socket"),
		messagesRx:        desc("messages_received_total", "Messages decoded"),
		messagesTx:        desc("messages_sent_total", "Messages sent"),
		pingsSent:         desc("pings_sent_total", "Keepalive pings sent"),
		connects:          desc("connects_total", "Sessions that reached the ready state"),
		reconnects:        desc("reconnects_total", "Ready sessions after the first"),
		handshakeFailures: desc("handshake_failures_total", "Failed encryption handshakes"),
		lastActivity:      desc("last_activity_timestamp_seconds", "Time of the last received frame"),
	}
}

func (c *sessionCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.connected, c.framesRx, c.framesTx, c.messagesRx, c.messagesTx,
		c.pingsSent, c.connects, c.reconnects, c.handshakeFailures, c.lastActivity,
	} {
		ch <- d
	}
}

func (c *sessionCollector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		addr := src.Address()
		st := src.Stats()
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), addr)
		}

		connected := 0.0
		if st.Connected {
			connected = 1
		}
		ch <- prometheus.MustNewConstMetric(c.connected, prometheus.GaugeValue, connected, addr)
		counter(c.framesRx, st.FramesRx)
		counter(c.framesTx, st.FramesTx)
		counter(c.messagesRx, st.MessagesRx)
		counter(c.messagesTx, st.MessagesTx)
		counter(c.pingsSent, st.PingsSent)
		counter(c.connects, st.Connects)
		counter(c.reconnects, st.Reconnects)
		counter(c.handshakeFailures, st.HandshakeFailures)
		if !st.LastActivity.IsZero() {
			ch <- prometheus.MustNewConstMetric(c.lastActivity, prometheus.GaugeValue,
				float64(st.LastActivity.UnixNano())/1e9, addr)
		}
	}
}
