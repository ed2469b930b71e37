package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Jeffail/gabs/v2"
	"github.com/PuerkitoBio/goquery"

	"fknsrs.biz/p/rutube/internal/ctxhttpclient"
	"fknsrs.biz/p/rutube/internal/ctxlogger"
)

// Error is a transport failure or a non-2xx response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
	}

	return fmt.Sprintf("fetch %s: status code: %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) NotFound() bool { return e.StatusCode == http.StatusNotFound }

func get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	for k, v := range header {
		req.Header[k] = v
	}

	ctxlogger.GetLogger(ctx).WithField("http.url", url).Trace("fetching")

	res, err := ctxhttpclient.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, &Error{URL: url, StatusCode: res.StatusCode}
	}

	return res, nil
}

func Bytes(ctx context.Context, url string, header http.Header) ([]byte, error) {
	res, err := get(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("fetch.Bytes: %w", err)
	}
	defer res.Body.Close()

	d, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch.Bytes: %w", &Error{URL: url, StatusCode: res.StatusCode, Err: err})
	}

	return d, nil
}

// JSON downloads and parses a JSON document. A body that is not valid JSON
// is reported as a fetch failure of that URL.
func JSON(ctx context.Context, url string, header http.Header) (*gabs.Container, error) {
	d, err := Bytes(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("fetch.JSON: %w", err)
	}

	j, err := gabs.ParseJSON(d)
	if err != nil {
		return nil, fmt.Errorf("fetch.JSON: %w", &Error{URL: url, StatusCode: http.StatusOK, Err: err})
	}

	return j, nil
}

func Document(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch.Document: %w", err)
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch.Document: %w", &Error{URL: url, StatusCode: res.StatusCode, Err: err})
	}

	return doc, nil
}
