package formats

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/rutube/internal/media"
)

func stubExpander(formats map[string][]media.Format, failures map[string]error) ExpandFunc {
	return func(ctx context.Context, manifestURL, label string) ([]media.Format, error) {
		if err := failures[manifestURL]; err != nil {
			return nil, err
		}

		return formats[manifestURL], nil
	}
}

func TestResolveEmpty(t *testing.T) {
	a := assert.New(t)

	r := NewResolver()

	a.Empty(r.Resolve(context.Background(), nil))
	a.Empty(r.Resolve(context.Background(), map[string]string{}))
}

func TestResolveDirect(t *testing.T) {
	a := assert.New(t)

	r := NewResolver()

	a.Equal([]media.Format{
		{URL: "http://x/video.mp4", FormatID: "mp4_std"},
	}, r.Resolve(context.Background(), map[string]string{"mp4_std": "http://x/video.mp4"}))
}

func TestResolveExpandsManifests(t *testing.T) {
	a := assert.New(t)

	r := &Resolver{
		Segmented: stubExpander(map[string][]media.Format{
			"http://x/master.m3u8?t=1": {
				{URL: "http://x/360.m3u8", FormatID: "m3u8-800", Height: 360, Bitrate: 800, Protocol: media.ProtocolHLS},
				{URL: "http://x/720.m3u8", FormatID: "m3u8-2000", Height: 720, Bitrate: 2000, Protocol: media.ProtocolHLS},
			},
		}, nil),
		Adaptive: stubExpander(map[string][]media.Format{
			"http://x/manifest.f4m": {
				{URL: "http://x/hds/720/", FormatID: "default-1500", Height: 720, Bitrate: 1500, Protocol: media.ProtocolHDS},
			},
		}, nil),
	}

	formats := r.Resolve(context.Background(), map[string]string{
		"m3u8":    "http://x/master.m3u8?t=1",
		"default": "http://x/manifest.f4m",
		"mp4":     "http://x/video.mp4",
	})

	a.Equal([]string{"m3u8-2000", "default-1500", "m3u8-800", "mp4"}, formatIDs(formats))
}

func TestResolveSuppressesManifestFailures(t *testing.T) {
	a := assert.New(t)

	r := &Resolver{
		Segmented: stubExpander(nil, map[string]error{
			"http://x/broken.m3u8": fmt.Errorf("boom"),
		}),
		Adaptive: stubExpander(nil, nil),
	}

	formats := r.Resolve(context.Background(), map[string]string{
		"m3u8": "http://x/broken.m3u8",
		"f4m":  "http://x/empty.f4m",
		"mp4":  "http://x/video.mp4",
	})

	a.Equal([]media.Format{{URL: "http://x/video.mp4", FormatID: "mp4"}}, formats)
}

func TestResolveDeduplicatesByURL(t *testing.T) {
	a := assert.New(t)

	r := &Resolver{
		Segmented: func(ctx context.Context, manifestURL, label string) ([]media.Format, error) {
			return []media.Format{{URL: "http://x/720.m3u8", FormatID: label + "-2000", Height: 720}}, nil
		},
	}

	formats := r.Resolve(context.Background(), map[string]string{
		"m3u8":    "http://x/master.m3u8",
		"default": "http://x/master.m3u8",
	})

	a.Equal([]string{"default-2000"}, formatIDs(formats))
}

func TestSortIsTotalAndDeterministic(t *testing.T) {
	input := []media.Format{
		{URL: "http://x/a.mp4", FormatID: "b", Height: 720, Bitrate: 1000},
		{URL: "https://x/a.mp4", FormatID: "a", Height: 720, Bitrate: 1000},
		{URL: "http://x/c.mp4", FormatID: "a", Height: 720, Bitrate: 1000},
		{URL: "http://x/d.m3u8", FormatID: "d", Height: 1080, Bitrate: 500},
		{URL: "http://x/e.mp4", FormatID: "e", Height: 1080, Bitrate: 500},
		{URL: "http://x/f.mp4", FormatID: "f"},
		{URL: "http://x/g.mp4", FormatID: "g", Height: 720, Bitrate: 1000, VCodec: "vp9"},
	}

	expected := []string{"e", "d", "a", "g", "a", "b", "f"}

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		t.Run(fmt.Sprintf("shuffle_%02d", i), func(t *testing.T) {
			a := assert.New(t)

			shuffled := append([]media.Format(nil), input...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			Sort(shuffled, DefaultRank)

			a.Equal(expected, formatIDs(shuffled))
			a.Equal("https://x/a.mp4", shuffled[2].URL)

			for j := 1; j < len(shuffled); j++ {
				prev, cur := DefaultRank(shuffled[j-1]), DefaultRank(shuffled[j])
				a.GreaterOrEqual(prev.Compare(cur), 0)
				if prev.Compare(cur) == 0 {
					a.LessOrEqual(shuffled[j-1].FormatID, shuffled[j].FormatID)
				}
			}
		})
	}
}

func TestSortInjectedRank(t *testing.T) {
	a := assert.New(t)

	formats := []media.Format{
		{FormatID: "hd", Height: 1080},
		{FormatID: "sd", Height: 360},
	}

	// prefer the smallest rendition
	Sort(formats, func(f media.Format) Rank { return Rank{Height: -f.Height} })

	a.Equal([]string{"sd", "hd"}, formatIDs(formats))
}

func TestExt(t *testing.T) {
	for _, tc := range []struct {
		url string
		ext string
	}{
		{"http://x/video.mp4", "mp4"},
		{"http://x/master.m3u8?sign=abc.def", "m3u8"},
		{"http://x/manifest.F4M", "f4m"},
		{"http://x/manifest.f4m/", "f4m"},
		{"http://x/video", ""},
		{"http://x/video.mp4#t=10", "mp4"},
		{"http://x/weird.m3u8-bad", ""},
	} {
		t.Run(tc.url, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.ext, Ext(tc.url))
		})
	}
}

func TestProtocol(t *testing.T) {
	a := assert.New(t)

	a.Equal(media.ProtocolHTTPS, Protocol(media.Format{URL: "https://x/a.mp4"}))
	a.Equal(media.ProtocolHTTP, Protocol(media.Format{URL: "http://x/a.mp4"}))
	a.Equal(media.ProtocolHLS, Protocol(media.Format{URL: "https://x/a.m3u8"}))
	a.Equal(media.ProtocolHDS, Protocol(media.Format{URL: "https://x/a.mp4", Protocol: media.ProtocolHDS}))
}

func formatIDs(a []media.Format) []string {
	r := make([]string, len(a))
	for i, e := range a {
		r[i] = e.FormatID
	}
	return r
}
