package middleware

import "net/http"

// Chain wraps h so the given middleware execute in the order listed.
//
//	handler := Chain(mux,
//	    Config(cfg),        // runs first
//	    RequestLogging,
//	    AuthMiddleware(secret),
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	// Wrap in reverse so the first listed middleware is outermost.
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
