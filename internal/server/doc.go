// Package server is the loopback HTTP surface consumed by the window and
// tray layer. It exposes the five gateway operations and the one-shot
// fetch as JSON endpoints, and pushes the price-update and
// settings-updated broadcast topics to the UI over a WebSocket.
package server
