package ctxhttpclient

import (
	"context"
	"net/http"
)

// context registration

var httpClientKey int

func WithHTTPClient(ctx context.Context, httpClient *http.Client) context.Context {
	return context.WithValue(ctx, &httpClientKey, httpClient)
}

func GetHTTPClient(ctx context.Context) *http.Client {
	if v := ctx.Value(&httpClientKey); v != nil {
		return v.(*http.Client)
	}

	return http.DefaultClient
}

// middleware

func Register(httpClient *http.Client) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithHTTPClient(r.Context(), httpClient)))
	}
}

// transport

// UserAgentTransport fills in the User-Agent header on requests that don't
// already carry one.
type UserAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func NewUserAgentTransport(transport http.RoundTripper, userAgent string) *UserAgentTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &UserAgentTransport{Transport: transport, UserAgent: userAgent}
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.UserAgent == "" || req.Header.Get("user-agent") != "" {
		return t.Transport.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.UserAgent)

	return t.Transport.RoundTrip(req)
}
