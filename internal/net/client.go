// Package net holds the shared HTTP client used to talk to remote
// checker services. The client presents a current Chrome TLS
// fingerprint and user agent, matching the browser context the
// requests would normally originate from.
package net

import (
	"context"
	"io"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

var client, _ = tls_client.NewHttpClient(tls_client.NewNoopLogger(),
	tls_client.WithTimeoutSeconds(10),
	tls_client.WithClientProfile(profiles.Chrome_133),
)

// NewPOST builds a pre-populated request.
func NewPOST(ctx context.Context, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("X-Forwarded-For", RandV4())
	return req, nil
}

// Do forwards to the shared client.
func Do(req *http.Request) (*http.Response, error) { return client.Do(req) }

const ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
