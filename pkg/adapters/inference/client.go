// Package inference relays otoscopy images to the remote binary screening and
// multiclass diagnostic classifiers.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aretw0/carepath/internal/logging"
)

// Stage selects the classifier.
type Stage string

const (
	StageBinary     Stage = "binary"
	StageMulticlass Stage = "multiclass"
)

// ParseStage maps a query value to a stage. Anything but "multiclass" is binary.
func ParseStage(s string) Stage {
	if strings.EqualFold(strings.TrimSpace(s), string(StageMulticlass)) {
		return StageMulticlass
	}
	return StageBinary
}

var (
	// ErrMissingImage is returned when the request carries no base64 image.
	ErrMissingImage = errors.New("missing image (base64) in body")
	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("inference service unavailable")

	errUpstream = errors.New("upstream server error")
)

// Request is an image to classify.
type Request struct {
	Image string
	// ApplyMedicalEnhancement is only sent to the binary stage; nil means true.
	ApplyMedicalEnhancement *bool
}

// Response is the relayed upstream answer.
type Response struct {
	// Status is 200 for any 2xx upstream reply, otherwise the upstream status.
	Status int
	// Body is the upstream JSON, or {"raw": "..."} when the upstream did not send JSON.
	Body json.RawMessage
}

// Client calls the classifiers through a circuit breaker.
type Client struct {
	endpoints map[Stage]string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the given endpoints.
func New(binaryURL, multiclassURL string, opts ...Option) *Client {
	c := &Client{
		endpoints: map[Stage]string{
			StageBinary:     binaryURL,
			StageMulticlass: multiclassURL,
		},
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inference",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Classify posts the image to the stage's endpoint and relays the reply.
// Upstream 5xx replies are returned as responses but count as breaker failures.
func (c *Client) Classify(ctx context.Context, stage Stage, req Request) (*Response, error) {
	if req.Image == "" {
		return nil, ErrMissingImage
	}
	endpoint, ok := c.endpoints[stage]
	if !ok || endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured for stage %q", stage)
	}

	payload := map[string]any{"image": req.Image}
	if stage == StageBinary {
		enhance := true
		if req.ApplyMedicalEnhancement != nil {
			enhance = *req.ApplyMedicalEnhancement
		}
		payload["apply_medical_enhancement"] = enhance
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var relayed *Response
	_, err = c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.post(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
		relayed = resp
		if resp.Status >= http.StatusInternalServerError {
			return nil, errUpstream
		}
		return nil, nil
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, errUpstream):
		c.logger.Warn("inference upstream failed", "stage", string(stage), "status", relayed.Status)
		return relayed, nil
	case err != nil:
		c.logger.Error("inference relay failed", "stage", string(stage), "error", err)
		return nil, err
	}
	return relayed, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	status := resp.StatusCode
	if status >= 200 && status < 300 {
		status = http.StatusOK
	}
	return &Response{Status: status, Body: relayBody(resp.Header.Get("Content-Type"), data)}, nil
}

func relayBody(contentType string, data []byte) json.RawMessage {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" && json.Valid(data) {
		return data
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(data)})
	return wrapped
}
