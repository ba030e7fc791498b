package server

import (
	"net/http"
	"slices"
)

// BasicRouter is a [Router] over [http.ServeMux] method patterns.
//
// Middleware wraps the whole mux, so unmatched requests are logged and
// counted too. Inside the chain r.Pattern holds the matched pattern once the
// mux has dispatched.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	patterns    []string
	handler     http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	mux := http.NewServeMux()
	return &BasicRouter{mux: mux, handler: mux}
}

// Use appends middleware; the first one added is outermost. Nil middleware is skipped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	for _, m := range middleware {
		if m != nil {
			r.middlewares = append(r.middlewares, m)
		}
	}
	r.handler = r.Apply(r.mux)
}

// Handle registers handler for "METHOD path". GET also answers HEAD and
// other methods get a 405 from the mux.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(method+" "+path, handler)
}

// Handler registers every route of handler for all methods.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.register(route, handler)
	}
}

func (r *BasicRouter) register(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
	r.patterns = append(r.patterns, pattern)
}

// Patterns returns the registered patterns, sorted.
func (r *BasicRouter) Patterns() []string {
	patterns := slices.Clone(r.patterns)
	slices.Sort(patterns)
	return patterns
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Apply wraps handler in the registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
