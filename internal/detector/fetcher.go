package detector

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/internal/fingerprint"
)

// Fetcher retrieves candidate files from the live target and digests their
// bodies. It issues exactly one request per path; nothing is retried, a
// failed or non-200 response is a normal negative signal.
type Fetcher struct {
	client  *resty.Client
	baseURL *url.URL
	headers map[string]string
	logger  hclog.Logger
}

// NewFetcher returns a Fetcher probing relative paths against baseURL with
// the given extra request headers. The resty client is expected to be
// configured with SetDoNotParseResponse so bodies can be streamed.
func NewFetcher(client *resty.Client, baseURL string, headers map[string]string, logger hclog.Logger) (*Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}

	return &Fetcher{
		client:  client,
		baseURL: u,
		headers: headers,
		logger:  logger,
	}, nil
}

// Fetch requests filePath relative to the base URL and returns the SHA-1
// digest of the response body. ok is false for any negative signal: an
// unresolvable path, a transport error, or a non-200 status.
func (f *Fetcher) Fetch(filePath string) (digest string, ok bool) {
	ref, err := url.Parse(filePath)
	if err != nil {
		f.logger.Debug("unresolvable file path", "path", filePath, "error", err)
		return "", false
	}
	target := f.baseURL.ResolveReference(ref).String()

	resp, err := f.client.R().SetHeaders(f.headers).Get(target)
	if err != nil {
		f.logger.Debug("request failed", "url", target, "error", err)
		return "", false
	}

	body := resp.RawBody()
	if body == nil {
		return "", false
	}
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		f.logger.Debug("file not present on target", "url", target, "status", resp.StatusCode())
		return "", false
	}

	digest, err = fingerprint.HashReader(body)
	if err != nil {
		f.logger.Debug("failed to read response body", "url", target, "error", err)
		return "", false
	}
	return digest, true
}
