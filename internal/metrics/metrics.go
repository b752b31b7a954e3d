// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Room metrics
var (
	// ActiveRooms tracks the number of live room actors.
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poker_active_rooms",
			Help: "Number of live room actors",
		},
	)

	// ConnectedClients tracks connected WebSocket clients across all rooms.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poker_connected_clients",
			Help: "Number of connected WebSocket clients across all rooms",
		},
	)

	// RoundsRevealedTotal counts effective reveal transitions.
	RoundsRevealedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_rounds_revealed_total",
			Help: "Total rounds revealed",
		},
	)

	// RoomPanicsTotal counts room actor panic recoveries.
	RoomPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_room_panics_total",
			Help: "Total room actor panic recoveries",
		},
	)
)

// Transport metrics
var (
	// InboundMessagesTotal counts inbound websocket messages by type.
	InboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poker_inbound_messages_total",
			Help: "Total inbound websocket messages by message type",
		},
		[]string{"type"},
	)

	// DroppedBroadcastsTotal counts broadcasts dropped for slow clients.
	DroppedBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_dropped_broadcasts_total",
			Help: "Total broadcast messages dropped due to a full client buffer",
		},
	)

	// WebSocketPingFailures counts failed keep-alive pings.
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_websocket_ping_failures_total",
			Help: "Total WebSocket ping failures",
		},
	)

	// ConnectionsRejectedTotal counts websocket connections rejected by the
	// connection limits, labeled by reason.
	ConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poker_connections_rejected_total",
			Help: "Total WebSocket connections rejected by connection limits",
		},
		[]string{"reason"},
	)
)

// Persistence metrics
var (
	// PersistenceFailuresTotal counts failed best-effort recorder calls.
	PersistenceFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poker_persistence_failures_total",
			Help: "Total failed session or round persistence calls",
		},
	)
)
