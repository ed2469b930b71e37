// Package pagewalker drives page-numbered collection endpoints. Pages are
// requested one at a time starting at 1, because whether to request the
// next page depends on the content of the current one.
package pagewalker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Jeffail/gabs/v2"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/gabsutil"
)

type FetchFunc func(ctx context.Context, url string, header http.Header) (*gabs.Container, error)

type Options struct {
	// PageURL builds the URL of a page; numbering starts at 1.
	PageURL func(page int) string
	Header  http.Header
	// Items extracts the items of a page. Defaults to the "results" array.
	Items func(page *gabs.Container) []*gabs.Container
	// HasMore reports whether another page should be requested after this
	// one. A nil HasMore relies on an empty page alone to stop.
	HasMore func(page *gabs.Container) bool
	// Fetch defaults to fetch.JSON.
	Fetch FetchFunc
}

type Result struct {
	Items    []*gabs.Container
	Pages    int
	LastPage *gabs.Container
}

func Results(page *gabs.Container) []*gabs.Container {
	return gabsutil.Children(page, "results")
}

// HasNext requires an explicit true "has_next"; a missing flag ends the
// walk.
func HasNext(page *gabs.Container) bool {
	v, _ := gabsutil.Bool(page, "has_next")
	return v
}

// UnlessNoNext only stops on an explicit false "has_next", leaving endpoints
// that omit the flag to be ended by an empty page.
func UnlessNoNext(page *gabs.Container) bool {
	v, ok := gabsutil.Bool(page, "has_next")
	return !ok || v
}

// Walk fetches pages until one is empty or HasMore says there are no more,
// and returns every item in page order. If any page fails, nothing
// collected so far is returned.
func Walk(ctx context.Context, opts Options) (*Result, error) {
	if opts.PageURL == nil {
		return nil, fmt.Errorf("pagewalker.Walk: PageURL is required")
	}

	items := opts.Items
	if items == nil {
		items = Results
	}

	fetchPage := opts.Fetch
	if fetchPage == nil {
		fetchPage = fetch.JSON
	}

	l := ctxlogger.GetLogger(ctx)

	var res Result

	for pageNumber := 1; ; pageNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pagewalker.Walk: %w", err)
		}

		u := opts.PageURL(pageNumber)

		l.WithFields(logrus.Fields{
			"page.number": pageNumber,
			"page.url":    u,
		}).Debug("downloading page")

		page, err := fetchPage(ctx, u, opts.Header)
		if err != nil {
			return nil, fmt.Errorf("pagewalker.Walk: page %d: %w", pageNumber, err)
		}

		res.Pages = pageNumber
		res.LastPage = page

		pageItems := items(page)
		if len(pageItems) == 0 {
			break
		}

		res.Items = append(res.Items, pageItems...)

		if opts.HasMore != nil && !opts.HasMore(page) {
			break
		}
	}

	l.WithFields(logrus.Fields{
		"page.count": res.Pages,
		"item.count": len(res.Items),
	}).Debug("finished walking pages")

	return &res, nil
}
