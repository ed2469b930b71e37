// Package httpcache is a RoundTripper that answers repeated GET requests
// from a store for a fixed time.
package httpcache

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/rutube/internal/ctxclock"
	"fknsrs.biz/p/rutube/internal/ctxlogger"
)

const DefaultMaxAge = 24 * time.Hour

type Entry struct {
	StoredAt   time.Time
	URL        string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *Entry) Response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        e.Status,
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Storage returns a nil entry and no error for a miss.
type Storage interface {
	Get(key string) (*Entry, error)
	Put(key string, e *Entry) error
}

// Key identifies a request by its URL and the representation it asks for.
// The playlist endpoint serves different bodies depending on Accept.
func Key(req *http.Request) string {
	h := sha1.New()
	io.WriteString(h, req.URL.String())
	io.WriteString(h, "\n")
	io.WriteString(h, strings.ToLower(req.Header.Get("accept")))

	return req.URL.Host + "/" + hex.EncodeToString(h.Sum(nil))
}

type Transport struct {
	transport http.RoundTripper
	storage   Storage
	maxAge    time.Duration
}

func NewTransport(transport http.RoundTripper, storage Storage, maxAge time.Duration) *Transport {
	if transport == nil {
		transport = http.DefaultTransport
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	return &Transport{
		transport: transport,
		storage:   storage,
		maxAge:    maxAge,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport.RoundTrip(req)
	}

	ctx := req.Context()
	l := ctxlogger.GetLogger(ctx).WithField("http.url", req.URL.String())
	now := ctxclock.Now(ctx)
	key := Key(req)

	e, err := t.storage.Get(key)
	if err != nil {
		l.WithError(err).Warn("could not read from http cache")
	} else if e != nil && now.Sub(e.StoredAt) < t.maxAge {
		l.WithField("cache.age", now.Sub(e.StoredAt).String()).Trace("http cache hit")
		return e.Response(req), nil
	}

	res, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return res, nil
	}

	d, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, err
	}

	e = &Entry{
		StoredAt:   now,
		URL:        req.URL.String(),
		Status:     res.Status,
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       d,
	}

	if err := t.storage.Put(key, e); err != nil {
		l.WithError(err).WithFields(logrus.Fields{"cache.key": key}).Warn("could not write to http cache")
	}

	return e.Response(req), nil
}
