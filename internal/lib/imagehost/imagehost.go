// Package imagehost uploads and deletes profile pictures on Imgur.
//
// Every call goes through a circuit breaker; failures surface as
// upstream errors naming the "image_host" collaborator.
package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/deppfellow/profile-api/internal/errs"
	"github.com/deppfellow/profile-api/internal/metrics"
)

// Collaborator is the name reported in upstream errors and metrics.
const Collaborator = "image_host"

const defaultTimeout = 15 * time.Second

// Image is an uploaded picture.
type Image struct {
	ID           string `json:"id"`
	Link         string `json:"link"`
	DeleteHandle string `json:"deletehash"`
}

type response struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
}

// statusError is a non-2xx answer from the image host.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("image host returned %d: %s", e.Status, e.Body)
}

// rejectedInput reports whether the host refused the request itself (a bad
// image, a missing resource) rather than failing to serve it. Auth failures
// and throttling are the host's or our credentials' problem.
func (e *statusError) rejectedInput() bool {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return e.Status >= 400 && e.Status < 500
}

// countsAsSuccess keeps rejected input from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *statusError
	return errors.As(err, &se) && se.rejectedInput()
}

type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(baseURL, clientID string, logger *zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        Collaborator,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores a base64-encoded image.
func (c *Client) Upload(ctx context.Context, base64Image string) (*Image, error) {
	form := url.Values{}
	form.Set("image", base64Image)
	form.Set("type", "base64")

	data, err := c.call(ctx, "upload", http.MethodPost, "/3/image", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var img Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, errs.NewUpstreamError(Collaborator, errors.Wrap(err, "decode upload response"))
	}
	if img.ID == "" || img.Link == "" {
		return nil, errs.NewUpstreamError(Collaborator, errors.New("upload response missing id or link"))
	}
	return &img, nil
}

// Delete removes an image by its delete handle.
func (c *Client) Delete(ctx context.Context, deleteHandle string) error {
	_, err := c.call(ctx, "delete", http.MethodDelete, "/3/image/"+url.PathEscape(deleteHandle), nil)
	return err
}

func (c *Client) call(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, method, path, body)
	})
	metrics.RecordUpstream(Collaborator, op, err)
	if err == nil {
		return data, nil
	}

	var se *statusError
	if op == "upload" && errors.As(err, &se) && se.rejectedInput() {
		c.logger.Warn().Err(err).Str("operation", op).Msg("image host rejected the image")
		return nil, errs.NewValidationFailedError([]errs.FieldError{{
			Field:  "image",
			Reason: "invalid",
			Error:  "image was rejected by the image host",
		}})
	}

	c.logger.Error().Err(err).Str("operation", op).Msg("image host call failed")
	return nil, errs.NewUpstreamError(Collaborator, err)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &statusError{Status: res.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if !envelope.Success {
		return nil, fmt.Errorf("image host reported failure with status %d", envelope.Status)
	}
	return envelope.Data, nil
}
