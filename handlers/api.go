package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"fknsrs.biz/p/rutube/internal/ctxconfig"
	"fknsrs.biz/p/rutube/internal/ctxrutube"
	"fknsrs.biz/p/rutube/internal/httputil"
	"fknsrs.biz/p/rutube/internal/media"
	"fknsrs.biz/p/rutube/internal/rutube"
	"fknsrs.biz/p/rutube/internal/stringutil"
)

func wantsResolve(r *http.Request) bool {
	return stringutil.LooksTrue(r.URL.Query().Get("resolve"))
}

func resolve(r *http.Request, pl *media.Playlist) (*media.Playlist, error) {
	if !wantsResolve(r) {
		return pl, nil
	}

	ctx := r.Context()

	return ctxrutube.GetClient(ctx).ResolveEntries(ctx, pl, ctxconfig.ResolveWorkers(ctx))
}

func Extract(rw http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		httputil.WriteJSON(rw, r, http.StatusBadRequest, map[string]string{"error": "url parameter is required"})
		return
	}

	res, err := ctxrutube.GetClient(r.Context()).Extract(r.Context(), u)
	if err != nil {
		httputil.WriteError(rw, r, err)
		return
	}

	if res.Playlist != nil {
		if res.Playlist, err = resolve(r, res.Playlist); err != nil {
			httputil.WriteError(rw, r, err)
			return
		}
	}

	httputil.WriteJSON(rw, r, http.StatusOK, res)
}

func Video(rw http.ResponseWriter, r *http.Request) {
	info, err := ctxrutube.GetClient(r.Context()).GetVideo(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(rw, r, err)
		return
	}

	httputil.WriteJSON(rw, r, http.StatusOK, info)
}

func Embed(rw http.ResponseWriter, r *http.Request) {
	info, err := ctxrutube.GetClient(r.Context()).GetEmbed(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(rw, r, err)
		return
	}

	httputil.WriteJSON(rw, r, http.StatusOK, info)
}

type collectionFunc func(c *rutube.Client, ctx context.Context, id string) (*media.Playlist, error)

func collection(get collectionFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		pl, err := get(ctxrutube.GetClient(r.Context()), r.Context(), mux.Vars(r)["id"])
		if err != nil {
			httputil.WriteError(rw, r, err)
			return
		}

		if pl, err = resolve(r, pl); err != nil {
			httputil.WriteError(rw, r, err)
			return
		}

		httputil.WriteJSON(rw, r, http.StatusOK, pl)
	}
}
