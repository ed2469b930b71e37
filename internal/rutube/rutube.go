package rutube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jeffail/gabs/v2"

	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/formats"
	"fknsrs.biz/p/rutube/internal/gabsutil"
	"fknsrs.biz/p/rutube/internal/pagewalker"
	"fknsrs.biz/p/rutube/internal/rutubeutil"
)

const DefaultBaseURL = "https://rutube.ru"

type MissingFieldError = gabsutil.MissingFieldError

var ErrUnrecognizedURL = rutubeutil.ErrUnrecognized

// MetadataFetchError reports a mandatory request that failed: the metadata
// or options of a video, a collection document, or any page of a
// collection.
type MetadataFetchError struct {
	Kind     string
	ID       string
	Endpoint string
	Err      error
}

func (e *MetadataFetchError) Error() string {
	return fmt.Sprintf("could not fetch %s %s from %s: %s", e.Kind, e.ID, e.Endpoint, e.Err)
}

func (e *MetadataFetchError) Unwrap() error { return e.Err }

type Client struct {
	BaseURL string
	Formats *formats.Resolver
	// Fetch defaults to fetch.JSON.
	Fetch pagewalker.FetchFunc
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Formats: formats.NewResolver(),
	}
}

func (c *Client) endpoint(format string, args ...interface{}) string {
	for i, e := range args {
		if s, ok := e.(string); ok {
			args[i] = url.PathEscape(s)
		}
	}

	return c.BaseURL + fmt.Sprintf(format, args...)
}

func (c *Client) fetchJSON(ctx context.Context, kind, id, u string, header http.Header) (*gabs.Container, error) {
	fetchJSON := c.Fetch
	if fetchJSON == nil {
		fetchJSON = fetch.JSON
	}

	j, err := fetchJSON(ctx, u, header)
	if err != nil {
		return nil, &MetadataFetchError{Kind: kind, ID: id, Endpoint: u, Err: err}
	}

	return j, nil
}

func (c *Client) formatResolver() *formats.Resolver {
	if c.Formats == nil {
		return formats.NewResolver()
	}

	return c.Formats
}
