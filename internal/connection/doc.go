// Package connection follows a running marketwatch daemon over WebSocket.
//
// Client owns one connection to the daemon's /ws feed: it decodes events,
// answers pings and reports a stale connection. Follow wraps a Client with
// reconnection and exponential backoff.
package connection
