package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/domain/resource"
)

// HTTPConfig represents the configuration for the HTTP backend.
type HTTPConfig struct {
	TimeoutSec int               `yaml:"timeout_sec" mapstructure:"timeout_sec" default:"30" validate:"gte=1,lte=600"`
	MaxRetries int               `yaml:"max_retries" mapstructure:"max_retries" default:"3" validate:"gte=1,lte=10"`
	MaxBytes   int64             `yaml:"max_bytes" mapstructure:"max_bytes" default:"268435456" validate:"gt=0"`
	Headers    map[string]string `yaml:"headers" mapstructure:"headers"`
}

// HTTP fetches item audio over HTTP(S) into a seekable in-memory
// buffer.
type HTTP struct {
	client     *http.Client
	headers    map[string]string
	maxRetries int
	retryDelay time.Duration
	maxBytes   int64
}

// NewHTTP creates an HTTP fetch backend.
func NewHTTP(cfg HTTPConfig) *HTTP {
	return &HTTP{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		headers:    cfg.Headers,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		maxBytes:   cfg.MaxBytes,
	}
}

// Fetch downloads the item's audio and attaches an owned stream handle.
// An item that already carries a handle is left alone.
func (h *HTTP) Fetch(ctx context.Context, item *resource.Item) (resource.LoadStatus, error) {
	if item.HasStream() {
		item.SetStatus(resource.StatusStreamExisting)
		return resource.StatusStreamExisting, nil
	}

	var data []byte
	err := h.retry(ctx, func() error {
		body, err := h.download(ctx, item.URL)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			item.SetStatus(resource.StatusCancelled)
			return resource.StatusCancelled, err
		}
		item.SetStatus(resource.StatusFailed)
		return resource.StatusFailed, errors.Wrapf(err, "fetch %s", item.URL)
	}

	if !item.AttachStream(newBytesStream(data)) {
		// A concurrent fetch attached first; its handle stays.
		item.SetStatus(resource.StatusStreamExisting)
		return resource.StatusStreamExisting, nil
	}

	item.SetStatus(resource.StatusOk)
	zlog.Debug().Msgf("fetch: downloaded: url=%s bytes=%d", item.URL, len(data))
	return resource.StatusOk, nil
}

// download performs a single GET and drains the body.
func (h *HTTP) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if int64(len(body)) > h.maxBytes {
		return nil, &sizeError{limit: h.maxBytes}
	}
	return body, nil
}

// retry retries an operation with backoff, honoring ctx.
func (h *HTTP) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < h.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			return err
		}

		if i < h.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// statusError reports a non-200 response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// sizeError reports a response body over the configured limit.
type sizeError struct {
	limit int64
}

func (e *sizeError) Error() string {
	return fmt.Sprintf("resource exceeds %d bytes", e.limit)
}

// isRetryable checks if an error is worth another attempt. Rate limits,
// server errors and transport errors are retryable; client errors and
// oversized resources are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	var ze *sizeError
	if errors.As(err, &ze) {
		return false
	}
	return true
}
