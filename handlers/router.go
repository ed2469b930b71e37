package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"fknsrs.biz/p/rutube/internal/httputil"
	"fknsrs.biz/p/rutube/internal/rutube"
)

func NewRouter() *mux.Router {
	m := mux.NewRouter()

	m.Methods(http.MethodGet).Path("/api/extract").HandlerFunc(Extract)
	m.Methods(http.MethodGet).Path("/api/videos/{id}").HandlerFunc(Video)
	m.Methods(http.MethodGet).Path("/api/embeds/{id}").HandlerFunc(Embed)
	m.Methods(http.MethodGet).Path("/api/channels/{id}").HandlerFunc(collection((*rutube.Client).GetChannel))
	m.Methods(http.MethodGet).Path("/api/persons/{id}").HandlerFunc(collection((*rutube.Client).GetPerson))
	m.Methods(http.MethodGet).Path("/api/movies/{id}").HandlerFunc(collection((*rutube.Client).GetMovie))
	m.Methods(http.MethodGet).Path("/api/playlists/{id}").HandlerFunc(collection((*rutube.Client).GetPlaylist))

	m.NotFoundHandler = http.HandlerFunc(httputil.NotFound)

	return m
}
