package formats

import (
	"strings"

	"fknsrs.biz/p/rutube/internal/media"
)

// Rank is the sort key of a format. Fields are compared in declaration
// order and higher is better.
type Rank struct {
	Height   int
	Bitrate  int
	Protocol int
	Codec    int
}

func (r Rank) Compare(o Rank) int {
	for _, d := range [...]int{
		r.Height - o.Height,
		r.Bitrate - o.Bitrate,
		r.Protocol - o.Protocol,
		r.Codec - o.Codec,
	} {
		if d < 0 {
			return -1
		} else if d > 0 {
			return 1
		}
	}

	return 0
}

type RankFunc func(f media.Format) Rank

var protocolPreference = map[string]int{
	media.ProtocolHTTPS: 4,
	media.ProtocolHTTP:  3,
	media.ProtocolHLS:   2,
	media.ProtocolHDS:   1,
}

var codecPreference = []struct {
	prefix string
	value  int
}{
	{"av01", 5},
	{"vp9", 4},
	{"hvc", 3},
	{"hev", 3},
	{"avc", 2},
	{"vp8", 1},
}

// DefaultRank orders by resolution, then bitrate, then delivery protocol
// (progressive download ahead of streaming manifests), then video codec.
// Unknown values rank lowest.
func DefaultRank(f media.Format) Rank {
	r := Rank{
		Height:   f.Height,
		Bitrate:  f.Bitrate,
		Protocol: protocolPreference[Protocol(f)],
	}

	vcodec := strings.ToLower(f.VCodec)
	for _, e := range codecPreference {
		if strings.HasPrefix(vcodec, e.prefix) {
			r.Codec = e.value
			break
		}
	}

	return r
}

// Protocol returns the format's delivery protocol, inferring it from the
// URL when the format doesn't name one.
func Protocol(f media.Format) string {
	if f.Protocol != "" {
		return f.Protocol
	}

	switch Ext(f.URL) {
	case "m3u8":
		return media.ProtocolHLS
	case "f4m":
		return media.ProtocolHDS
	}

	switch {
	case strings.HasPrefix(f.URL, "https:"):
		return media.ProtocolHTTPS
	case strings.HasPrefix(f.URL, "http:"):
		return media.ProtocolHTTP
	}

	return ""
}
