package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
)

// GeneratePath is the generate endpoint under the backend base URL.
const GeneratePath = "/api/generate"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// GatewayService calls the generate endpoint of the backend.
type GatewayService struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

// NewGatewayService creates a gateway for baseURL.
//
// An empty baseURL falls back to [shared.DefaultBaseURL] and a nil client to [http.DefaultClient].
func NewGatewayService(baseURL string, client *http.Client) *GatewayService {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = shared.DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &GatewayService{
		baseURL:    baseURL,
		path:       GeneratePath,
		httpClient: client,
	}
}

// WithPath returns a copy of the gateway that targets path instead of [GeneratePath].
func (g *GatewayService) WithPath(path string) *GatewayService {
	clone := *g
	if path != "" {
		clone.path = path
	}
	return &clone
}

// URL is the full endpoint the gateway posts to.
func (g *GatewayService) URL() string {
	return g.baseURL + g.path
}

// Generate performs the call and never fails.
//
// Any error from [GatewayService.Do] becomes a failure result carrying the error text.
func (g *GatewayService) Generate(ctx context.Context) models.GenerationResult {
	result, err := g.Do(ctx)
	if err != nil {
		return models.Failed(failureMessage(err))
	}
	return result
}

// Do performs the call, returning transport, status and decode failures as errors.
func (g *GatewayService) Do(ctx context.Context) (models.GenerationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL(), http.NoBody)
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return models.GenerationResult{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	return decodeResult(body)
}

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

func (e *StatusError) Unwrap() error { return shared.ErrUnexpectedStatus }

// decodeResult parses a result envelope. The body must be a JSON object; an
// absent message is filled in so callers can always display it.
func decodeResult(body []byte) (models.GenerationResult, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	var result models.GenerationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return result.Normalize(), nil
}

// failureMessage renders err for display, dropping the sentinel prefix so the
// user sees what the transport or backend reported.
func failureMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	msg := err.Error()
	for _, sentinel := range []error{shared.ErrAPIRequest, shared.ErrMalformedResponse} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
	}
	return msg
}
