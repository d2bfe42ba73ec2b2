// Package network provides pre-configured HTTP clients for outbound calls to the
// chat-bot API and artwork hosts.
package network

import (
	"net"
	"net/http"
	"time"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the shared plain client for single-shot requests.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: userAgent{next: newTransport()},
}

// newTransport initializes a tuned http.Transport with pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 90 * time.Second
	t.TLSHandshakeTimeout = 5 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

// Retrying returns a client that retries connection errors and 5xx responses up to retryMax times.
// timeout bounds each attempt, so it must exceed any server-side long-poll window.
func Retrying(retryMax int, timeout time.Duration) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: userAgent{next: newTransport()},
	}

	return retryClient.StandardClient()
}

// userAgent stamps outgoing requests with the application user agent unless one is set.
type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}
