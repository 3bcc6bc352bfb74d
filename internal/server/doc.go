// Package server provides HTTP routing, middleware and the JSON handlers of the playlist web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, with method and wildcard patterns.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [PlaylistHandler] and [AuthHandler] mount a prefix and dispatch internally with their own mux.
//
// # Middleware Stack
//
// [Recoverer], [RequestLogger], the per-client [RateLimiter] and [Authenticate] wrap every route.
// [RequireAuth] guards the playlist namespace and answers 401 without a session.
//
// # Errors
//
// Handlers never choose status codes for service errors themselves; they pass errors to writeServiceError,
// which maps the shared sentinels to 400/401/403/404 and logs anything else as a 500.
package server
