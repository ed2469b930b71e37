package rutubeutil

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Kind string

const (
	Invalid  = Kind("invalid")
	Video    = Kind("video")
	Embed    = Kind("embed")
	Channel  = Kind("channel")
	Movie    = Kind("movie")
	Person   = Kind("person")
	Playlist = Kind("playlist")
)

var ErrUnrecognized = errors.New("url not recognized")

var (
	videoPattern   = regexp.MustCompile(`^https?://(?:www\.)?rutube\.ru/(?:video|(?:play/)?embed)/([\da-z]{32})(?:[/?#]|$)`)
	embedPattern   = regexp.MustCompile(`^https?://(?:www\.)?rutube\.ru/(?:video|play)/embed/(\d+)(?:[/?#]|$)`)
	channelPattern = regexp.MustCompile(`^https?://(?:www\.)?rutube\.ru/tags/video/(\d+)(?:[/?#]|$)`)
	moviePattern   = regexp.MustCompile(`^https?://(?:www\.)?rutube\.ru/metainfo/tv/(\d+)(?:[/?#]|$)`)
	personPattern  = regexp.MustCompile(`^https?://(?:www\.)?rutube\.ru/video/person/(\d+)(?:[/?#]|$)`)
	iframePattern  = regexp.MustCompile(`^(?:https?:)?//(?:www\.)?rutube\.ru/embed/[\da-z]{32}`)
)

// Identify works out which kind of resource a URL points at and extracts
// its identifier. Playlist URLs are checked before plain video URLs, since
// a playlist URL is also a video URL.
func Identify(rawURL string) (Kind, string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if id, err := ExtractPlaylistID(rawURL); err == nil {
		return Playlist, id, nil
	}

	if id, err := ExtractVideoID(rawURL); err == nil {
		return Video, id, nil
	}

	for _, e := range []struct {
		kind    Kind
		pattern *regexp.Regexp
	}{
		{Embed, embedPattern},
		{Channel, channelPattern},
		{Movie, moviePattern},
		{Person, personPattern},
	} {
		if m := e.pattern.FindStringSubmatch(rawURL); m != nil {
			return e.kind, m[1], nil
		}
	}

	return Invalid, "", fmt.Errorf("rutubeutil.Identify: %q: %w", rawURL, ErrUnrecognized)
}

// ExtractVideoID accepts video and embed page URLs that either carry no
// query or whose only parameter is pl_id.
func ExtractVideoID(rawURL string) (string, error) {
	m := videoPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("rutubeutil.ExtractVideoID: %q: %w", rawURL, ErrUnrecognized)
	}

	params, err := queryParams(rawURL)
	if err != nil {
		return "", fmt.Errorf("rutubeutil.ExtractVideoID: %w", err)
	}

	if len(params) > 0 {
		if _, ok := params["pl_id"]; !ok || len(params) != 1 {
			return "", fmt.Errorf("rutubeutil.ExtractVideoID: %q: only the pl_id parameter is allowed", rawURL)
		}
	}

	return m[1], nil
}

var playlistParams = map[string]bool{
	"pl_id":   true,
	"pl_type": true,
}

// IsPlaylistURL reports whether a video page URL should be handled as the
// playlist named by its pl_id parameter. Any parameter besides pl_id and
// pl_type disqualifies the URL.
func IsPlaylistURL(rawURL string) bool {
	_, err := ExtractPlaylistID(rawURL)
	return err == nil
}

func ExtractPlaylistID(rawURL string) (string, error) {
	if !videoPattern.MatchString(rawURL) {
		return "", fmt.Errorf("rutubeutil.ExtractPlaylistID: %q: %w", rawURL, ErrUnrecognized)
	}

	params, err := queryParams(rawURL)
	if err != nil {
		return "", fmt.Errorf("rutubeutil.ExtractPlaylistID: %w", err)
	}

	for name := range params {
		if !playlistParams[name] {
			return "", fmt.Errorf("rutubeutil.ExtractPlaylistID: %q: unrecognised parameter %q", rawURL, name)
		}
	}

	id := params.Get("pl_id")
	if n, err := strconv.Atoi(id); err != nil || n <= 0 {
		return "", fmt.Errorf("rutubeutil.ExtractPlaylistID: %q: pl_id should be a positive integer", rawURL)
	}

	return id, nil
}

func queryParams(rawURL string) (url.Values, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	return url.ParseQuery(u.RawQuery)
}

// ExtractEmbedURLs finds embedded players in an HTML page.
func ExtractEmbedURLs(doc *goquery.Document) []string {
	var a []string

	doc.Find("iframe[src]").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if !iframePattern.MatchString(src) {
			return
		}

		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}

		a = append(a, src)
	})

	return a
}

func VideoURL(id string) string {
	return "https://rutube.ru/video/" + id + "/"
}
