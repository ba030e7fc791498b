// Package server provides HTTP routing, middleware, and the relay handler for the web surface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added with Use wraps the whole mux; the first one added runs first.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux].
//
// # Relay
//
// [RelayHandler] serves POST /api/generate on the same origin as the page and forwards it to the
// backend's generate path. A 2xx upstream JSON result is passed through. Any failure answers 500 with
//
//	{"success":false,"message":"Failed to generate playlist","error":"Failed to generate playlist"}
//
// The relay sits behind [RateLimit], which answers 429 with the same envelope.
//
// # Middleware
//
//   - [Recovery] and [CORS] come from gorilla/handlers
//   - [Logging] writes one charmbracelet/log line per request
//   - [Metrics] records Prometheus request and run counters on a private registry
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [NewApp] wires all of the above for `playlistinator serve`, and [Server] runs it with graceful shutdown.
package server
