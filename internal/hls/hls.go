// Package hls expands segmented-streaming (m3u8) manifests into one format
// per variant stream.
package hls

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/media"
)

type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hls: could not parse manifest %s: %s", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Formats downloads the manifest at manifestURL and returns its variants.
// Format identifiers are prefixed with label.
func Formats(ctx context.Context, manifestURL, label string) ([]media.Format, error) {
	d, err := fetch.Bytes(ctx, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hls.Formats: %w", err)
	}

	a, err := ParseFormats(bytes.NewReader(d), manifestURL, label)
	if err != nil {
		return nil, fmt.Errorf("hls.Formats: %w", err)
	}

	return a, nil
}

func ParseFormats(r io.Reader, manifestURL, label string) ([]media.Format, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, &ParseError{URL: manifestURL, Err: err}
	}

	p, listType, err := m3u8.DecodeFrom(r, false)
	if err != nil {
		return nil, &ParseError{URL: manifestURL, Err: err}
	}

	switch listType {
	case m3u8.MEDIA:
		// a media playlist is itself the only variant
		return []media.Format{{
			URL:      manifestURL,
			FormatID: label,
			Ext:      "mp4",
			Protocol: media.ProtocolHLS,
		}}, nil
	case m3u8.MASTER:
		master, ok := p.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, &ParseError{URL: manifestURL, Err: fmt.Errorf("unexpected playlist type %T", p)}
		}

		var a []media.Format
		for _, v := range master.Variants {
			if v == nil || v.URI == "" || v.Iframe {
				continue
			}

			u, err := base.Parse(strings.TrimSpace(v.URI))
			if err != nil {
				continue
			}

			f := media.Format{
				URL:      u.String(),
				Ext:      "mp4",
				Protocol: media.ProtocolHLS,
				Bitrate:  int(v.Bandwidth / 1000),
			}

			f.Width, f.Height = parseResolution(v.Resolution)
			f.VCodec, f.ACodec = splitCodecs(v.Codecs)
			f.FormatID = variantID(label, v.Name, f.Bitrate, len(a))

			a = append(a, f)
		}

		return a, nil
	default:
		return nil, &ParseError{URL: manifestURL, Err: fmt.Errorf("unknown playlist type")}
	}
}

func variantID(label, name string, bitrate, index int) string {
	var suffix string

	switch {
	case name != "":
		suffix = name
	case bitrate > 0:
		suffix = strconv.Itoa(bitrate)
	default:
		suffix = strconv.Itoa(index)
	}

	if label == "" {
		return suffix
	}

	return label + "-" + suffix
}

func parseResolution(s string) (int, int) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0
	}

	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0
	}

	return width, height
}

var (
	videoCodecPrefixes = []string{"avc", "hvc", "hev", "vp0", "vp8", "vp9", "av01", "theora"}
	audioCodecPrefixes = []string{"mp4a", "ac-3", "ec-3", "opus", "vorbis", "mp3", "flac"}
)

func splitCodecs(s string) (string, string) {
	var vcodec, acodec string

	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		lc := strings.ToLower(c)

		for _, p := range videoCodecPrefixes {
			if strings.HasPrefix(lc, p) && vcodec == "" {
				vcodec = c
			}
		}
		for _, p := range audioCodecPrefixes {
			if strings.HasPrefix(lc, p) && acodec == "" {
				acodec = c
			}
		}
	}

	return vcodec, acodec
}
