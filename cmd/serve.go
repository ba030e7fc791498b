package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/playlistinator/internal/server"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/desertthunder/playlistinator/internal/tasks"
	"github.com/desertthunder/playlistinator/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve hosts the page and the relay until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	var recorder tasks.Recorder
	repo, closeDB, err := r.openRuns()
	defer closeDB()
	if err != nil {
		r.logger.Warn("history disabled", "error", err)
	} else {
		recorder = repo
	}

	app, err := r.newApp(recorder)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Addr(), app, shared.WithLogger(r.logger, "component", "server"))
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	url := pageURL(ln.Addr())
	r.writePlain("Serving %s at %s\n", web.Title, url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, ln)
}

// newApp builds the `serve` handler tree. recorder may be nil.
func (r *Runner) newApp(recorder tasks.Recorder) (http.Handler, error) {
	page, err := web.NewPageHandler(web.PageOpts{
		Endpoint:      services.GeneratePath,
		ToastDuration: r.config.UI.ToastDuration(),
		Logger:        r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build page: %w", err)
	}

	upstream := services.NewGatewayService(r.config.UpstreamURL(), r.httpClient).WithPath(r.config.Relay.GeneratePath)

	var metrics *server.Metrics
	if r.config.Server.Metrics {
		metrics = server.NewMetrics()
	}

	app := server.NewApp(server.AppOpts{
		Upstream:       upstream,
		Page:           page,
		Recorder:       recorder,
		Metrics:        metrics,
		Limiter:        server.NewLimiter(r.config.Relay.RateLimit, r.config.Relay.Burst),
		AllowedOrigins: r.config.Server.AllowedOrigins,
		Logger:         r.logger,
	})
	r.logger.Debug("routes registered", "patterns", app.Patterns())
	return app, nil
}

func pageURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
