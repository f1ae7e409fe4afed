// Package protocol defines the JSON message types exchanged over the
// HTTP control API and the WebSocket streaming channel.
package protocol
