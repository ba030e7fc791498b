// Package web renders the single Playlist Generator page.
//
// The page is one html/template with a few lines of JavaScript. Its button
// POSTs to the same-origin relay (see the server package), disables itself
// while the call is in flight and shows one toast per click.
//
// Routes
//
//	GET /  → the page
//
// Any other path under / answers 404.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/tasks"
)

//go:embed templates/*.html
var templates embed.FS

const (
	Title       = "Playlist Generator"
	Description = "Generate your personalized Spotify playlist based on your Last.fm listening history"
	Label       = "Generate Playlist"
	BusyLabel   = "Generating Playlist..."
)

// Card is one of the informational panels under the progress bar.
type Card struct {
	Title string
	Body  string
}

// DefaultCards are the two panels shown on the page.
var DefaultCards = []Card{
	{Title: "Last.fm Stats", Body: "Your listening history from the last 30 days"},
	{Title: "Spotify Playlist", Body: "TK - Hot 100"},
}

// PageData is the template input.
type PageData struct {
	Title             string
	Description       string
	Cards             []Card
	Label             string
	BusyLabel         string
	Endpoint          string
	UnexpectedMessage string
	ToastMillis       int64
}

// PageOpts configures a [PageHandler].
type PageOpts struct {
	Endpoint      string        // defaults to [services.GeneratePath]
	ToastDuration time.Duration // defaults to four seconds
	Logger        *log.Logger
}

// PageHandler serves the page. It renders once at construction.
type PageHandler struct {
	body   []byte
	logger *log.Logger
}

// NewPageHandler parses the embedded template and renders the page.
func NewPageHandler(opts PageOpts) (*PageHandler, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = services.GeneratePath
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 4 * time.Second
	}

	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	data := PageData{
		Title:             Title,
		Description:       Description,
		Cards:             DefaultCards,
		Label:             Label,
		BusyLabel:         BusyLabel,
		Endpoint:          opts.Endpoint,
		UnexpectedMessage: tasks.UnexpectedFailureMessage,
		ToastMillis:       opts.ToastDuration.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return &PageHandler{body: buf.Bytes(), logger: opts.Logger}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *PageHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP writes the rendered page for GET and HEAD on "/".
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(h.body); err != nil && h.logger != nil {
		h.logger.Debug("failed to write page", "error", err)
	}
}
