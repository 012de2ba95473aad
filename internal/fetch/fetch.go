// internal/fetch/fetch.go

// Package fetch retrieves web pages for the research task and reduces them to
// compact markup suitable for a model prompt.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// DefaultUserAgent identifies the fetcher to the sites it reads.
const DefaultUserAgent = "quill-cli/1.0"

// maxBodyBytes bounds how much of a page is read before cleaning.
const maxBodyBytes = 8 << 20

// Page is a fetched and cleaned document.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	// Text is the cleaned markup, already truncated.
	Text string
}

// HTTPFetcher fetches pages over HTTP with transparent decompression.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Option customizes an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTransport replaces the underlying round tripper. Decompression still
// wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) { f.client.Transport = newDecodingTransport(rt) }
}

func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewHTTPFetcher builds a fetcher. Per-call timeouts come from Fetch.
func NewHTTPFetcher(logger *zap.Logger, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Transport: newDecodingTransport(nil)},
		userAgent: DefaultUserAgent,
		logger:    logger.Named("fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url within timeout and returns it cleaned and truncated to
// maxChars characters. Status codes of 400 and above are service errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, timeout time.Duration, maxChars int) (Page, error) {
	const op = "fetch"
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, schemas.NewValidationError("url", err.Error())
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return Page{}, ctxErr
		}
		return Page{}, schemas.NewTransportError(op, fmt.Errorf("failed to fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Page{}, schemas.NewServiceError(op, resp.StatusCode,
			fmt.Sprintf("request to %s failed with status code %d", url, resp.StatusCode), nil)
	}

	text, err := CleanHTML(io.LimitReader(resp.Body, maxBodyBytes), maxChars)
	if err != nil {
		return Page{}, schemas.NewTransportError(op, fmt.Errorf("failed to read body of %s: %w", url, err))
	}

	f.logger.Debug("Fetched page",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("characters", len([]rune(text))),
		zap.Duration("duration", time.Since(start)),
	)
	return Page{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Text:        text,
	}, nil
}
