// Package f4m expands adaptive-streaming (HDS/F4M) manifests into one format
// per media rendition.
package f4m

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/media"
)

type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("f4m: could not parse manifest %s: %s", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type manifest struct {
	XMLName xml.Name       `xml:"manifest"`
	BaseURL string         `xml:"baseURL"`
	Media   []manifestItem `xml:"media"`
}

type manifestItem struct {
	URL     string `xml:"url,attr"`
	Href    string `xml:"href,attr"`
	Bitrate string `xml:"bitrate,attr"`
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
}

func Formats(ctx context.Context, manifestURL, label string) ([]media.Format, error) {
	d, err := fetch.Bytes(ctx, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("f4m.Formats: %w", err)
	}

	a, err := ParseFormats(bytes.NewReader(d), manifestURL, label)
	if err != nil {
		return nil, fmt.Errorf("f4m.Formats: %w", err)
	}

	return a, nil
}

func ParseFormats(r io.Reader, manifestURL, label string) ([]media.Format, error) {
	var m manifest
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, &ParseError{URL: manifestURL, Err: err}
	}

	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, &ParseError{URL: manifestURL, Err: err}
	}

	if s := strings.TrimSpace(m.BaseURL); s != "" {
		if u, err := base.Parse(s); err == nil {
			base = u
			if !strings.HasSuffix(base.Path, "/") {
				base.Path += "/"
			}
		}
	}

	var a []media.Format
	for i, e := range m.Media {
		// version 2 manifests can point at nested manifests through href;
		// those are not followed
		if e.URL == "" {
			continue
		}

		u, err := base.Parse(strings.TrimSpace(e.URL))
		if err != nil {
			continue
		}

		bitrate := atoi(e.Bitrate)

		suffix := strconv.Itoa(i)
		if bitrate > 0 {
			suffix = strconv.Itoa(bitrate)
		}

		formatID := suffix
		if label != "" {
			formatID = label + "-" + suffix
		}

		a = append(a, media.Format{
			URL:      u.String(),
			FormatID: formatID,
			Ext:      "flv",
			Protocol: media.ProtocolHDS,
			Width:    atoi(e.Width),
			Height:   atoi(e.Height),
			Bitrate:  bitrate,
		})
	}

	return a, nil
}

func atoi(s string) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
