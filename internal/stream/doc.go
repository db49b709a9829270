// Package stream serves change events over WebSocket.
//
// The hub consumes a router subscription and broadcasts each change as
// a JSON frame to every connected client, preserving emission order.
// Clients may narrow the feed with a resources query parameter. Each
// client owns a bounded outbound queue; a client that cannot keep up
// is disconnected rather than allowed to stall the broadcast loop.
package stream
