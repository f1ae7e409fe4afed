// Package server exposes the HTTP control API and the WebSocket
// audio streaming endpoint.
package server
