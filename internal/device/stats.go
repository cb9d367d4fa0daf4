package device

import (
	"sync/atomic"
	"time"
)

// Stats holds session counters. Counters survive reconnects.
type Stats struct {
	Connected         bool
	FramesRx          uint64
	FramesTx          uint64
	MessagesRx        uint64
	MessagesTx        uint64
	PingsSent         uint64
	Connects          uint64
	Reconnects        uint64
	HandshakeFailures uint64
	LastActivity      time.Time
}

type counters struct {
	connected         atomic.Bool
	framesRx          atomic.Uint64
	framesTx          atomic.Uint64
	messagesRx        atomic.Uint64
	messagesTx        atomic.Uint64
	pingsSent         atomic.Uint64
	connects          atomic.Uint64
	handshakeFailures atomic.Uint64
	lastActivity      atomic.Int64 // unix nanoseconds
}

func (c *counters) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Connected:         c.connected.Load(),
		FramesRx:          c.framesRx.Load(),
		FramesTx:          c.framesTx.Load(),
		MessagesRx:        c.messagesRx.Load(),
		MessagesTx:        c.messagesTx.Load(),
		PingsSent:         c.pingsSent.Load(),
		Connects:          c.connects.Load(),
		HandshakeFailures: c.handshakeFailures.Load(),
	}
	if s.Connects > 1 {
		s.Reconnects = s.Connects - 1
	}
	if ns := c.lastActivity.Load(); ns != 0 {
		s.LastActivity = time.Unix(0, ns)
	}
	return s
}
