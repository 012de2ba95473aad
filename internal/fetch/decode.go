// internal/fetch/decode.go
package fetch

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

var (
	gzipPool = sync.Pool{New: func() any { return new(gzip.Reader) }}
	// brotli.NewReader(nil) yields a reader ready for Reset.
	brotliPool = sync.Pool{New: func() any { return brotli.NewReader(nil) }}
)

// acceptEncoding is advertised when the caller did not set its own.
const acceptEncoding = "br, gzip, deflate"

// decodingTransport negotiates compression and hands callers a decoded body.
type decodingTransport struct {
	next http.RoundTripper
}

func newDecodingTransport(next http.RoundTripper) *decodingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &decodingTransport{next: next}
}

func (t *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		// Setting the header ourselves turns off net/http's own gzip handling.
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := decodeBody(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return resp, nil
}

// layeredBody closes the decoder, returns pooled readers and closes the
// wrapped body.
type layeredBody struct {
	io.ReadCloser
	inner   io.ReadCloser
	release func()
}

func (b *layeredBody) Close() error {
	err := errors.Join(b.ReadCloser.Close(), b.inner.Close())
	if b.release != nil {
		b.release()
		b.release = nil
	}
	return err
}

// decodeBody unwraps every Content-Encoding layer, last applied first.
func decodeBody(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		for _, layer := range reversed(strings.Split(encodings[i], ",")) {
			var (
				decoder io.ReadCloser
				release func()
			)
			switch strings.ToLower(strings.TrimSpace(layer)) {
			case "", "identity":
				continue
			case "gzip", "x-gzip":
				zr := gzipPool.Get().(*gzip.Reader)
				if err := zr.Reset(resp.Body); err != nil {
					gzipPool.Put(zr)
					return fmt.Errorf("gzip: %w", err)
				}
				decoder, release = zr, func() { gzipPool.Put(zr) }
			case "br":
				br := brotliPool.Get().(*brotli.Reader)
				if err := br.Reset(resp.Body); err != nil {
					brotliPool.Put(br)
					return fmt.Errorf("brotli: %w", err)
				}
				decoder, release = io.NopCloser(br), func() { brotliPool.Put(br) }
			case "deflate":
				decoder = inflate(resp.Body)
			default:
				return fmt.Errorf("unsupported content encoding %q", layer)
			}
			resp.Body = &layeredBody{ReadCloser: decoder, inner: resp.Body, release: release}
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// inflate reads zlib-wrapped deflate and falls back to a raw stream, which
// some servers send under the same name.
func inflate(r io.Reader) io.ReadCloser {
	br := bufio.NewReader(r)
	if hdr, err := br.Peek(2); err == nil && isZlibHeader(hdr[0], hdr[1]) {
		if zr, err := zlib.NewReader(br); err == nil {
			return zr
		}
	}
	return flate.NewReader(br)
}

// isZlibHeader checks the RFC 1950 CMF/FLG pair: deflate method and a valid
// check value.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
