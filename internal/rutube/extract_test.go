package rutube

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Jeffail/gabs/v2"
	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/rutube/internal/media"
)

func videoResponses(responses map[string]fakeResponse, ids ...string) map[string]fakeResponse {
	for _, id := range ids {
		responses["/api/video/"+id+"/?format=json"] = jsonResponse(`{"id": "` + id + `", "title": "title ` + id[:1] + `"}`)
		responses["/api/play/options/"+id+"/?format=json"] = jsonResponse(`{"video_balancer": {"default": "http://x/` + id + `.mp4"}}`)
	}

	return responses
}

func TestExtract(t *testing.T) {
	responses := videoResponses(map[string]fakeResponse{
		"/api/tags/video/1409/?page=1&format=json":      jsonResponse(`{"results": [` + videoRef(videoB) + `]}`),
		"/api/video/person/313878/?page=1&format=json":  jsonResponse(`{"results": [` + videoRef(videoB) + `]}`),
		"/api/metainfo/tv/363/?format=json":             jsonResponse(`{"name": "Movie"}`),
		"/api/metainfo/tv/363/video?page=1&format=json": jsonResponse(`{"results": []}`),
		"/api/playlist/source/227/?page=1":              jsonResponse(`{"name": "Playlist", "has_next": false, "results": [` + playlistItem(videoC, "C") + `]}`),
		"/api/playlist/source/4252/?page=1":             jsonResponse(`{"results": []}`),
		"/play/embed/6722881":                           htmlResponse(`<link rel="canonical" href="https://rutube.ru/video/` + videoA + `/">`),
	}, videoA)

	for _, tc := range []struct {
		url      string
		video    string
		playlist string
	}{
		{url: "https://rutube.ru/video/" + videoA + "/", video: videoA},
		{url: "http://www.rutube.ru/video/" + videoA + "/?pl_id=4252", playlist: "4252"},
		{url: "https://rutube.ru/embed/" + videoA, video: videoA},
		{url: "https://rutube.ru/play/embed/6722881", video: videoA},
		{url: "https://rutube.ru/tags/video/1409/", playlist: "1409"},
		{url: "https://rutube.ru/video/person/313878/", playlist: "313878"},
		{url: "https://rutube.ru/metainfo/tv/363/", playlist: "363"},
		{url: "https://rutube.ru/video/" + videoA + "/?pl_id=227&pl_type=source", playlist: "227"},
	} {
		t.Run(tc.url, func(t *testing.T) {
			a := assert.New(t)

			_, c, ctx, _ := newFakeAPI(t, responses)

			res, err := c.Extract(ctx, tc.url)
			if !a.NoError(err) {
				return
			}

			if tc.video != "" {
				a.Nil(res.Playlist)
				if a.NotNil(res.Video) {
					a.Equal(tc.video, res.Video.ID)
				}
			}

			if tc.playlist != "" {
				a.Nil(res.Video)
				if a.NotNil(res.Playlist) {
					a.Equal(tc.playlist, res.Playlist.ID)
				}
			}
		})
	}
}

func TestExtractUnrecognized(t *testing.T) {
	a := assert.New(t)

	_, c, ctx, _ := newFakeAPI(t, nil)

	for _, u := range []string{
		"",
		"https://example.com/video/" + videoA + "/",
		"https://rutube.ru/feeds/top/",
		"https://rutube.ru/video/" + videoA + "/?utm_source=x",
	} {
		res, err := c.Extract(ctx, u)
		a.Nil(res, u)
		a.True(errors.Is(err, ErrUnrecognizedURL), u)
	}
}

func TestResolveEntries(t *testing.T) {
	a := assert.New(t)

	_, c, ctx, _ := newFakeAPI(t, videoResponses(map[string]fakeResponse{}, videoA, videoB, videoC))

	resolved := &media.Info{ID: "already", Title: "kept"}

	pl := &media.Playlist{
		ID:    "1409",
		Title: "Channel",
		Entries: []media.Entry{
			{URL: "https://rutube.ru/video/" + videoA + "/", ID: videoA},
			{URL: "https://rutube.ru/video/" + videoB + "/"},
			{URL: "https://rutube.ru/video/already/", ID: "already", Info: resolved},
			{URL: "https://rutube.ru/video/" + videoC + "/", ID: videoC},
		},
	}

	out, err := c.ResolveEntries(ctx, pl, 2)
	if !a.NoError(err) {
		return
	}

	a.Equal("1409", out.ID)
	a.Equal("Channel", out.Title)

	if a.Len(out.Entries, 4) {
		a.Equal("title a", out.Entries[0].Info.Title)
		a.Equal(videoB, out.Entries[1].ID)
		a.Equal("title b", out.Entries[1].Info.Title)
		a.Same(resolved, out.Entries[2].Info)
		a.Equal("title c", out.Entries[3].Info.Title)
		a.Equal("http://x/"+videoC+".mp4", out.Entries[3].Info.Formats[0].URL)
	}

	a.Nil(pl.Entries[0].Info, "the input playlist should be left alone")
	a.Equal("", pl.Entries[1].ID)
}

func TestResolveEntriesFailure(t *testing.T) {
	a := assert.New(t)

	responses := videoResponses(map[string]fakeResponse{}, videoA)
	responses["/api/video/"+videoB+"/?format=json"] = statusResponse(http.StatusInternalServerError)

	_, c, ctx, _ := newFakeAPI(t, responses)

	out, err := c.ResolveEntries(ctx, &media.Playlist{
		ID: "1409",
		Entries: []media.Entry{
			{ID: videoA, URL: "https://rutube.ru/video/" + videoA + "/"},
			{ID: videoB, URL: "https://rutube.ru/video/" + videoB + "/"},
		},
	}, 4)
	a.Nil(out)

	var fetchErr *MetadataFetchError
	if a.ErrorAs(err, &fetchErr) {
		a.Equal(videoB, fetchErr.ID)
	}
}

func TestResolveEntriesRecoversPanics(t *testing.T) {
	a := assert.New(t)

	_, c, ctx, _ := newFakeAPI(t, nil)
	c.Fetch = func(ctx context.Context, url string, header http.Header) (*gabs.Container, error) {
		panic("boom")
	}

	out, err := c.ResolveEntries(ctx, &media.Playlist{
		Entries: []media.Entry{{ID: videoA}},
	}, 1)
	a.Nil(out)
	a.ErrorContains(err, "boom")
}
