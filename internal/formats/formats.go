package formats

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/f4m"
	"fknsrs.biz/p/rutube/internal/hls"
	"fknsrs.biz/p/rutube/internal/media"
)

// ExpandFunc turns one manifest URL into the formats it describes.
type ExpandFunc func(ctx context.Context, manifestURL, label string) ([]media.Format, error)

type Resolver struct {
	Segmented ExpandFunc
	Adaptive  ExpandFunc
	Rank      RankFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		Segmented: hls.Formats,
		Adaptive:  f4m.Formats,
		Rank:      DefaultRank,
	}
}

// Resolve classifies each labelled variant URL, expands manifests and
// returns the combined formats, deduplicated by URL and sorted best first.
// A manifest that can't be expanded contributes no formats; it never fails
// the whole call.
func (r *Resolver) Resolve(ctx context.Context, variants map[string]string) []media.Format {
	l := ctxlogger.GetLogger(ctx)

	labels := lo.Keys(variants)
	sort.Strings(labels)

	var a []media.Format

	for _, label := range labels {
		u := strings.TrimSpace(variants[label])
		if u == "" {
			continue
		}

		var expand ExpandFunc
		switch Ext(u) {
		case "m3u8":
			expand = r.Segmented
		case "f4m":
			expand = r.Adaptive
		}

		if expand == nil {
			a = append(a, media.Format{URL: u, FormatID: label})
			continue
		}

		formats, err := expand(ctx, u, label)
		if err != nil {
			l.WithError(err).WithFields(logrus.Fields{
				"format.label": label,
				"format.url":   u,
			}).Warn("could not expand manifest; skipping")
			continue
		}

		a = append(a, formats...)
	}

	a = lo.UniqBy(a, func(f media.Format) string { return f.URL })

	Sort(a, r.Rank)

	return a
}

// Sort orders formats best first according to rank. Formats of equal rank
// are ordered by FormatID and then URL, so the result doesn't depend on the
// input order.
func Sort(a []media.Format, rank RankFunc) {
	if rank == nil {
		rank = DefaultRank
	}

	sort.SliceStable(a, func(i, j int) bool {
		if c := rank(a[i]).Compare(rank(a[j])); c != 0 {
			return c > 0
		}

		if a[i].FormatID != a[j].FormatID {
			return a[i].FormatID < a[j].FormatID
		}

		return a[i].URL < a[j].URL
	})
}

var extPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Ext returns the lowercased file extension of a URL's path, or the empty
// string when it has none.
func Ext(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}

	p = strings.TrimSuffix(p, "/")

	ext := strings.TrimPrefix(path.Ext(p), ".")
	if !extPattern.MatchString(ext) {
		return ""
	}

	return strings.ToLower(ext)
}
