// Package connection provides reconnection helpers for a Gecko client.
//
// Reconnection is never automatic. A caller that wants to retry after the
// client drops its connection calls Retry (or gecko.Client's
// ReconnectWithBackoff) explicitly.
//
// # Backoff
//
// Delays grow exponentially from 250ms, doubling per attempt, capped at
// 8 seconds:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// The sequence restarts after a successful connection.
package connection
