package observability

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// HubStats is a point-in-time snapshot of the hub counters.
type HubStats struct {
	Registered   uint64 `json:"registered"`
	Unregistered uint64 `json:"unregistered"`
	Broadcasts   uint64 `json:"broadcasts"`
	Delivered    uint64 `json:"delivered"`
	Dropped      uint64 `json:"dropped"`
	TakenAt      string `json:"taken_at"`
}

// HubMetrics collects delivery counters with atomic increments so the hub
// never takes an extra lock on the hot path. A nil *HubMetrics is valid
// and counts nothing.
type HubMetrics struct {
	log *slog.Logger

	registered   uint64
	unregistered uint64
	broadcasts   uint64
	delivered    uint64
	dropped      uint64
}

func NewHubMetrics(log *slog.Logger) *HubMetrics {
	return &HubMetrics{log: log}
}

func (m *HubMetrics) IncrRegistered() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.registered, 1)
}

func (m *HubMetrics) IncrUnregistered() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unregistered, 1)
}

func (m *HubMetrics) IncrBroadcasts() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.broadcasts, 1)
}

// AddDelivered records n successful mailbox enqueues in one shot.
func (m *HubMetrics) AddDelivered(n uint64) {
	if m == nil || n == 0 {
		return
	}
	atomic.AddUint64(&m.delivered, n)
}

// IncrDropped records an event evicted from a full mailbox.
func (m *HubMetrics) IncrDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.dropped, 1)
	if m.log != nil {
		m.log.Debug("Mailbox dropped oldest event")
	}
}

func (m *HubMetrics) Snapshot() HubStats {
	if m == nil {
		return HubStats{}
	}
	return HubStats{
		Registered:   atomic.LoadUint64(&m.registered),
		Unregistered: atomic.LoadUint64(&m.unregistered),
		Broadcasts:   atomic.LoadUint64(&m.broadcasts),
		Delivered:    atomic.LoadUint64(&m.delivered),
		Dropped:      atomic.LoadUint64(&m.dropped),
		TakenAt:      time.Now().UTC().Format(time.RFC3339),
	}
}
