package media

import (
	"time"
)

// Format is one playable variant of a video: either a direct file or a
// single rendition expanded out of a streaming manifest.
type Format struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
	Ext      string `json:"ext,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	// kilobits per second
	Bitrate int    `json:"tbr,omitempty"`
	VCodec  string `json:"vcodec,omitempty"`
	ACodec  string `json:"acodec,omitempty"`
}

const (
	ProtocolHTTPS = "https"
	ProtocolHTTP  = "http"
	ProtocolHLS   = "m3u8_native"
	ProtocolHDS   = "f4m"
)

type Info struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Duration     *int       `json:"duration,omitempty"`
	ViewCount    *int       `json:"view_count,omitempty"`
	UploaderName string     `json:"uploader,omitempty"`
	UploaderID   string     `json:"uploader_id,omitempty"`
	UploadDate   *time.Time `json:"upload_date,omitempty"`
	ThumbnailURL string     `json:"thumbnail,omitempty"`
	WebpageURL   string     `json:"webpage_url,omitempty"`
	AgeLimit     int        `json:"age_limit"`
	Category     []string   `json:"category,omitempty"`
	IsLive       *bool      `json:"is_live,omitempty"`
	Formats      []Format   `json:"formats"`
}

// AgeLimit projects the remote adult flag onto an age rating.
func AgeLimit(adult bool) int {
	if adult {
		return 18
	}

	return 0
}

// Entry is one item of a Playlist. Entries from endpoints that only list
// video URLs carry no Info until they are resolved.
type Entry struct {
	URL  string `json:"url"`
	ID   string `json:"id,omitempty"`
	Info *Info  `json:"info,omitempty"`
}

func (e Entry) Resolved() bool { return e.Info != nil }

type Playlist struct {
	ID      string  `json:"id"`
	Title   string  `json:"title,omitempty"`
	Entries []Entry `json:"entries"`
}

// Result is what a dispatched extraction produces: exactly one of Video or
// Playlist is set.
type Result struct {
	Video    *Info     `json:"video,omitempty"`
	Playlist *Playlist `json:"playlist,omitempty"`
}
