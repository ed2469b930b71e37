package rutube

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fknsrs.biz/p/rutube/internal/catchpanic"
	"fknsrs.biz/p/rutube/internal/media"
	"fknsrs.biz/p/rutube/internal/rutubeutil"
)

// Extract recognises a page URL and runs the matching resolver.
func (c *Client) Extract(ctx context.Context, rawURL string) (*media.Result, error) {
	kind, id, err := rutubeutil.Identify(rawURL)
	if err != nil {
		return nil, fmt.Errorf("rutube.Extract: %w", err)
	}

	var res media.Result

	switch kind {
	case rutubeutil.Video:
		res.Video, err = c.GetVideo(ctx, id)
	case rutubeutil.Embed:
		res.Video, err = c.GetEmbed(ctx, id)
	case rutubeutil.Channel:
		res.Playlist, err = c.GetChannel(ctx, id)
	case rutubeutil.Person:
		res.Playlist, err = c.GetPerson(ctx, id)
	case rutubeutil.Movie:
		res.Playlist, err = c.GetMovie(ctx, id)
	case rutubeutil.Playlist:
		res.Playlist, err = c.GetPlaylist(ctx, id)
	default:
		err = fmt.Errorf("no resolver for %s urls", kind)
	}

	if err != nil {
		return nil, fmt.Errorf("rutube.Extract: %w", err)
	}

	return &res, nil
}

// ResolveEntries returns a copy of pl in which every entry without
// metadata has been resolved with GetVideo, using up to workers concurrent
// requests. Entry order is kept. If any entry fails, no playlist is
// returned.
func (c *Client) ResolveEntries(ctx context.Context, pl *media.Playlist, workers int) (*media.Playlist, error) {
	if workers < 1 {
		workers = 1
	}

	out := media.Playlist{
		ID:      pl.ID,
		Title:   pl.Title,
		Entries: make([]media.Entry, len(pl.Entries)),
	}
	copy(out.Entries, pl.Entries)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range out.Entries {
		e := &out.Entries[i]
		if e.Resolved() {
			continue
		}

		g.Go(func() error {
			id := e.ID
			if id == "" {
				var err error
				if id, err = rutubeutil.ExtractVideoID(e.URL); err != nil {
					return fmt.Errorf("entry %q: %w", e.URL, err)
				}
			}

			info, err := catchpanic.CatchErr1(func() (*media.Info, error) { return c.GetVideo(ctx, id) })
			if err != nil {
				return err
			}

			e.ID = id
			e.Info = info

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rutube.ResolveEntries: collection %s: %w", pl.ID, err)
	}

	return &out, nil
}
