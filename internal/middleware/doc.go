// Package middleware provides HTTP middleware for the image catalog server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//
// Both wrap the response writer without hiding http.Flusher or
// http.Hijacker, so the websocket endpoint can still upgrade.
package middleware
