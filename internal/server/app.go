package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/desertthunder/playlistinator/internal/tasks"
	"golang.org/x/time/rate"
)

// AppOpts contains the dependencies of the web surface.
type AppOpts struct {
	Upstream       services.Caller
	Page           Handler        // optional, serves GET /
	Recorder       tasks.Recorder // optional, receives relay runs
	Metrics        *Metrics       // optional, enables GET /metrics
	Limiter        *rate.Limiter  // optional, guards the relay
	AllowedOrigins []string
	Logger         *log.Logger
}

// NewApp assembles the router for `serve`: the page, the relay, health and metrics.
func NewApp(opts AppOpts) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := NewBasicRouter()
	r.Use(Recovery(logger), Logging(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(CORS(opts.AllowedOrigins))

	recorder := opts.Recorder
	if opts.Metrics != nil {
		recorder = tasks.Recorders(opts.Recorder, opts.Metrics)
	}

	relay := NewRelayHandler(opts.Upstream, recorder, shared.WithLogger(logger, "handler", "relay"))
	r.Handler(With(relay, RateLimit(opts.Limiter)))
	r.Handler(HealthHandler{})

	if opts.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Page != nil {
		r.Handler(opts.Page)
	}

	return r
}

// With wraps h in middleware while keeping its routes. The first middleware is outermost.
func With(h Handler, middleware ...Middleware) Handler {
	var wrapped http.Handler = h
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] != nil {
			wrapped = middleware[i](wrapped)
		}
	}
	return routed{Handler: wrapped, routes: h.Routes()}
}

type routed struct {
	http.Handler
	routes []string
}

func (r routed) Routes() []string { return r.routes }
