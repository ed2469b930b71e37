package rutube

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Jeffail/gabs/v2"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/gabsutil"
	"fknsrs.biz/p/rutube/internal/media"
	"fknsrs.biz/p/rutube/internal/pagewalker"
	"fknsrs.biz/p/rutube/internal/rutubeutil"
)

const (
	channelPageTemplate  = "/api/tags/video/%s/?page=%d&format=json"
	personPageTemplate   = "/api/video/person/%s/?page=%d&format=json"
	movieTemplate        = "/api/metainfo/tv/%s/?format=json"
	moviePageTemplate    = "/api/metainfo/tv/%s/video?page=%d&format=json"
	playlistPageTemplate = "/api/playlist/source/%s/?page=%d"
)

// the playlist endpoint answers with XML unless asked otherwise
var playlistHeader = http.Header{"Accept": []string{"application/json"}}

type collection struct {
	kind    string
	id      string
	title   string
	header  http.Header
	pageURL func(page int) string
	hasMore func(page *gabs.Container) bool
	entry   func(item *gabs.Container) (media.Entry, error)
	// titleFromPage reads the collection title from the last page fetched
	titleFromPage func(page *gabs.Container) string
}

func (c *Client) walk(ctx context.Context, col collection) (*media.Playlist, error) {
	l := ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
		"collection.kind": col.kind,
		"collection.id":   col.id,
	})

	var lastURL string

	res, err := pagewalker.Walk(ctxlogger.WithLogger(ctx, l), pagewalker.Options{
		PageURL: func(page int) string {
			lastURL = col.pageURL(page)
			return lastURL
		},
		Header:  col.header,
		HasMore: col.hasMore,
		Fetch:   c.Fetch,
	})
	if err != nil {
		return nil, &MetadataFetchError{Kind: col.kind, ID: col.id, Endpoint: lastURL, Err: err}
	}

	pl := media.Playlist{
		ID:      col.id,
		Title:   col.title,
		Entries: make([]media.Entry, 0, len(res.Items)),
	}

	for i, item := range res.Items {
		e, err := col.entry(item)
		if err != nil {
			return nil, fmt.Errorf("%s %s: item %d: %w", col.kind, col.id, i, err)
		}

		pl.Entries = append(pl.Entries, e)
	}

	if col.titleFromPage != nil {
		pl.Title = col.titleFromPage(res.LastPage)
	}

	l.WithFields(logrus.Fields{
		"page.count":  res.Pages,
		"entry.count": len(pl.Entries),
	}).Info("resolved collection")

	return &pl, nil
}

// referenceEntry maps a listing item to an entry that still has to be
// resolved through GetVideo.
func referenceEntry(item *gabs.Container) (media.Entry, error) {
	videoURL, err := gabsutil.RequireString(item, "video_url")
	if err != nil {
		return media.Entry{}, err
	}

	e := media.Entry{URL: videoURL}

	if id, err := rutubeutil.ExtractVideoID(videoURL); err == nil {
		e.ID = id
	} else {
		e.ID = gabsutil.StringOr(item, "id", "")
	}

	return e, nil
}

// playlistEntry maps a playlist item, which embeds everything but the
// formats, straight to a resolved entry.
func playlistEntry(item *gabs.Container) (media.Entry, error) {
	videoURL := gabsutil.StringOr(item, "video_url", "")

	id, ok := gabsutil.String(item, "id")
	if !ok {
		var err error
		if id, err = rutubeutil.ExtractVideoID(videoURL); err != nil {
			return media.Entry{}, &MissingFieldError{Field: "id"}
		}
	}

	info, err := infoFromJSON(id, item)
	if err != nil {
		return media.Entry{}, err
	}

	info.WebpageURL = videoURL

	return media.Entry{URL: videoURL, ID: id, Info: info}, nil
}

func (c *Client) videoList(ctx context.Context, kind, id, title, pageTemplate string) (*media.Playlist, error) {
	return c.walk(ctx, collection{
		kind:  kind,
		id:    id,
		title: title,
		pageURL: func(page int) string {
			return c.endpoint(pageTemplate, id, page)
		},
		hasMore: pagewalker.HasNext,
		entry:   referenceEntry,
	})
}

func (c *Client) GetChannel(ctx context.Context, id string) (*media.Playlist, error) {
	pl, err := c.videoList(ctx, "channel", id, "", channelPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetChannel: %w", err)
	}

	return pl, nil
}

func (c *Client) GetPerson(ctx context.Context, id string) (*media.Playlist, error) {
	pl, err := c.videoList(ctx, "person", id, "", personPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetPerson: %w", err)
	}

	return pl, nil
}

// GetMovie looks up the movie's name before listing its videos.
func (c *Client) GetMovie(ctx context.Context, id string) (*media.Playlist, error) {
	movie, err := c.fetchJSON(ctx, "movie", id, c.endpoint(movieTemplate, id), nil)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetMovie: %w", err)
	}

	name, err := gabsutil.RequireString(movie, "name")
	if err != nil {
		return nil, fmt.Errorf("rutube.GetMovie: movie %s: %w", id, err)
	}

	pl, err := c.videoList(ctx, "movie", id, name, moviePageTemplate)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetMovie: %w", err)
	}

	return pl, nil
}

func (c *Client) GetPlaylist(ctx context.Context, id string) (*media.Playlist, error) {
	pl, err := c.walk(ctx, collection{
		kind:   "playlist",
		id:     id,
		header: playlistHeader,
		pageURL: func(page int) string {
			return c.endpoint(playlistPageTemplate, id, page)
		},
		hasMore: pagewalker.UnlessNoNext,
		entry:   playlistEntry,
		titleFromPage: func(page *gabs.Container) string {
			return gabsutil.StringOr(page, "name", "")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rutube.GetPlaylist: %w", err)
	}

	return pl, nil
}
