package rutube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"fknsrs.biz/p/rutube/internal/ctxhttpclient"
	"fknsrs.biz/p/rutube/internal/ctxlogger"
)

type fakeResponse struct {
	status      int
	contentType string
	body        string
}

func jsonResponse(body string) fakeResponse {
	return fakeResponse{status: http.StatusOK, contentType: "application/json", body: body}
}

func htmlResponse(body string) fakeResponse {
	return fakeResponse{status: http.StatusOK, contentType: "text/html; charset=utf-8", body: body}
}

func statusResponse(status int) fakeResponse {
	return fakeResponse{status: status, contentType: "text/plain", body: http.StatusText(status)}
}

type fakeRequest struct {
	target string
	accept string
}

// fakeAPI answers requests by exact path and query. Anything it doesn't
// know about gets a 404.
type fakeAPI struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []fakeRequest
}

func (f *fakeAPI) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	f.mu.Lock()
	f.requests = append(f.requests, fakeRequest{target: target, accept: r.Header.Get("accept")})
	res, ok := f.responses[target]
	f.mu.Unlock()

	if !ok {
		res = statusResponse(http.StatusNotFound)
	}

	rw.Header().Set("content-type", res.contentType)
	rw.WriteHeader(res.status)
	rw.Write([]byte(res.body))
}

func (f *fakeAPI) URL(target string) string {
	return f.server.URL + target
}

func (f *fakeAPI) Requests() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]fakeRequest(nil), f.requests...)
}

func (f *fakeAPI) Targets() []string {
	var a []string
	for _, e := range f.Requests() {
		a = append(a, e.target)
	}
	return a
}

func newFakeAPI(t *testing.T, responses map[string]fakeResponse) (*fakeAPI, *Client, context.Context, *test.Hook) {
	f := &fakeAPI{responses: responses}
	f.server = httptest.NewServer(f)
	t.Cleanup(f.server.Close)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()
	ctx = ctxhttpclient.WithHTTPClient(ctx, f.server.Client())
	ctx = ctxlogger.WithLogger(ctx, logger)

	return f, New(f.server.URL), ctx, hook
}
