// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stream serves live election events over WebSocket.

# Handshake

	GET /ws?token=<jwt>

The token may also be sent as a bearer Authorization header. Connections
without a valid token are rejected with 401 before the upgrade. Each
accepted connection gets a fresh ID, is registered with its principal, and
joins its user_<id> and role_<role> channels. The first server frame is:

	{"type":"connected","connection_id":"...","channels":["user_...","role_voter"]}

# Client Frames

	{"type":"join_election","request_id":"1","election_id":"e1"}
	{"type":"leave_election","request_id":"2","election_id":"e1"}
	{"type":"subscribe_live_results","request_id":"3","election_id":"e1"}
	{"type":"unsubscribe_live_results","request_id":"4","election_id":"e1"}

Each is answered with an ack carrying the channel, or an error frame with a
code of invalid_request, forbidden, quota_exceeded, or unavailable.

# Server Events

Events are models.Event values: type, channel, optional seq, and payload.
Writes go through a bounded per-connection queue drained by one goroutine.
When the queue is full the event is dropped for that connection only.
*/
package stream
