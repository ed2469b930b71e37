package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/rutubeutil"
)

func WriteJSON(rw http.ResponseWriter, r *http.Request, status int, v interface{}) {
	rw.Header().Set("content-type", "application/json; charset=utf-8")
	rw.WriteHeader(status)

	enc := json.NewEncoder(rw)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		ctxlogger.GetLogger(r.Context()).WithError(err).Warn("could not write json response")
	}
}

// StatusForError picks the response status for a resolver failure.
// Unrecognised input and remote 404s are the caller's problem; any other
// remote failure is reported as a bad gateway.
func StatusForError(err error) int {
	if errors.Is(err, rutubeutil.ErrUnrecognized) {
		return http.StatusNotFound
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		if fetchErr.NotFound() {
			return http.StatusNotFound
		}

		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func WriteError(rw http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)

	ctxlogger.GetLogger(r.Context()).WithError(err).WithField("http.status_code", status).Warn("request failed")

	WriteJSON(rw, r, status, map[string]string{"error": err.Error()})
}

func NotFound(rw http.ResponseWriter, r *http.Request) {
	WriteJSON(rw, r, http.StatusNotFound, map[string]string{"error": "not found"})
}
