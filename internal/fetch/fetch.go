// Package fetch retrieves URL directives as text. Grounded on the webfetch
// tool: GET with content negotiation, size limits, and a strict content-type
// gate so binary or HTML payloads never land in a prompt.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

const (
	maxResponseSize = 5 * 1024 * 1024
	requestTimeout  = 30 * time.Second
	maxRetries      = 3
)

const acceptHeader = "text/markdown, application/json, text/plain, */*"

// allowedTypes are the content-type base types accepted outright.
var allowedTypes = map[string]bool{
	"text/markdown":      true,
	"text/x-markdown":    true,
	"text/plain":         true,
	"application/json":   true,
	"application/x-json": true,
	"text/json":          true,
}

// genericTypes get the looks-like sniff instead of outright acceptance.
var genericTypes = map[string]bool{
	"application/octet-stream": true,
	"text/html":                false, // html is rejected, not sniffed
}

// Fetcher performs URL resolution with retry on transport errors.
type Fetcher struct {
	Client *http.Client
}

// New returns a Fetcher with the default client.
func New() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: requestTimeout}}
}

// Text GETs the URL and returns the trimmed body. Transport errors retry
// with exponential backoff; HTTP and content-type failures do not.
func (f *Fetcher) Text(ctx context.Context, url string) (string, error) {
	var body string
	op := func() error {
		var err error
		body, err = f.fetchOnce(ctx, url)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(types.WrapError(types.KindNetworkError, err, "bad URL %s", url))
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", "mdflow")

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", types.WrapError(types.KindNetworkError, err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", backoff.Permanent(types.NewError(types.KindNetworkError,
			"fetching %s: HTTP %d", url, resp.StatusCode))
	}

	limited := io.LimitReader(resp.Body, maxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", types.WrapError(types.KindNetworkError, err, "reading %s", url)
	}
	if len(data) > maxResponseSize {
		return "", backoff.Permanent(types.NewError(types.KindFileSizeLimit,
			"%s exceeds the %d-byte response limit", url, maxResponseSize))
	}

	body := string(data)
	if err := checkContentType(url, resp.Header.Get("Content-Type"), body); err != nil {
		return "", backoff.Permanent(err)
	}
	return body, nil
}

// checkContentType accepts the allowlisted text types; a missing or generic
// type is accepted only if the body looks like JSON or markdown.
func checkContentType(url, contentType, body string) error {
	base := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		base = parsed
	}
	base = strings.ToLower(strings.TrimSpace(base))

	if allowedTypes[base] {
		return nil
	}
	if base == "" || genericTypes[base] {
		if looksLikeJSON(body) || looksLikeMarkdown(url, body) {
			return nil
		}
	}
	return types.NewError(types.KindUnsupportedContentType,
		"%s returned unsupported content type %q", url, contentType)
}

func looksLikeJSON(body string) bool {
	var v any
	return json.Unmarshal([]byte(body), &v) == nil
}

func looksLikeMarkdown(url, body string) bool {
	lower := strings.ToLower(url)
	for _, ext := range []string{".md", ".markdown", ".json"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, prefix := range []string{"#", "\n- ", "\n* ", "\n#"} {
		if strings.HasPrefix(body, prefix) {
			return true
		}
	}
	return strings.Contains(body, "```")
}
