package rutube

import (
	"context"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/rutube/internal/ctxlogger"
	"fknsrs.biz/p/rutube/internal/fetch"
	"fknsrs.biz/p/rutube/internal/gabsutil"
	"fknsrs.biz/p/rutube/internal/media"
	"fknsrs.biz/p/rutube/internal/rutubeutil"
	"fknsrs.biz/p/rutube/internal/timeutil"
)

const (
	videoTemplate   = "/api/video/%s/?format=json"
	optionsTemplate = "/api/play/options/%s/?format=json"
)

// GetVideo fetches a video's metadata and stream options and combines them.
// Both requests must succeed.
func (c *Client) GetVideo(ctx context.Context, id string) (*media.Info, error) {
	l := ctxlogger.GetLogger(ctx).WithField("video.id", id)

	video, err := c.fetchJSON(ctx, "video", id, c.endpoint(videoTemplate, id), nil)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetVideo: %w", err)
	}

	options, err := c.fetchJSON(ctx, "video options", id, c.endpoint(optionsTemplate, id), nil)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetVideo: %w", err)
	}

	remoteID, err := gabsutil.RequireString(video, "id")
	if err != nil {
		return nil, fmt.Errorf("rutube.GetVideo: video %s: %w", id, err)
	}
	if remoteID != id {
		return nil, fmt.Errorf("rutube.GetVideo: requested video %s but got %s", id, remoteID)
	}

	info, err := infoFromJSON(id, video)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetVideo: video %s: %w", id, err)
	}

	info.WebpageURL = rutubeutil.VideoURL(id)
	info.Formats = c.formatResolver().Resolve(ctx, gabsutil.StringMap(options, "video_balancer"))

	l.WithFields(logrus.Fields{
		"video.title":  info.Title,
		"format.count": len(info.Formats),
	}).Info("resolved video")

	return info, nil
}

// infoFromJSON maps the fields shared by the video endpoint and playlist
// items. Only the title is required; the author in particular is missing
// from some videos.
func infoFromJSON(id string, j *gabs.Container) (*media.Info, error) {
	title, err := gabsutil.RequireString(j, "title")
	if err != nil {
		return nil, err
	}

	info := media.Info{
		ID:           id,
		Title:        title,
		Description:  gabsutil.StringOr(j, "description", ""),
		Duration:     gabsutil.IntPtr(j, "duration"),
		ViewCount:    gabsutil.IntPtr(j, "hits"),
		ThumbnailURL: gabsutil.StringOr(j, "thumbnail_url", ""),
		UploadDate:   timeutil.ParseLooseDate(gabsutil.StringOr(j, "created_ts", "")),
		AgeLimit:     media.AgeLimit(gabsutil.Truthy(j, "is_adult")),
		IsLive:       gabsutil.BoolPtr(j, "is_livestream"),
		Formats:      []media.Format{},
	}

	if gabsutil.Exists(j, "author") {
		info.UploaderName = gabsutil.StringOr(j, "author.name", "")
		info.UploaderID = gabsutil.StringOr(j, "author.id", "")
	}

	if category, ok := gabsutil.String(j, "category.name"); ok && category != "" {
		info.Category = []string{category}
	}

	return &info, nil
}

const embedTemplate = "/play/embed/%s"

// GetEmbed follows an embedded player page to the canonical video it plays.
func (c *Client) GetEmbed(ctx context.Context, embedID string) (*media.Info, error) {
	u := c.endpoint(embedTemplate, embedID)

	doc, err := fetch.Document(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetEmbed: %w", &MetadataFetchError{Kind: "embed", ID: embedID, Endpoint: u, Err: err})
	}

	canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok || canonical == "" {
		return nil, fmt.Errorf("rutube.GetEmbed: embed %s: %w", embedID, &MissingFieldError{Field: "link[rel=canonical]"})
	}

	id, err := rutubeutil.ExtractVideoID(canonical)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetEmbed: embed %s: %w", embedID, err)
	}

	ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
		"embed.id": embedID,
		"video.id": id,
	}).Debug("found canonical video for embed")

	info, err := c.GetVideo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rutube.GetEmbed: %w", err)
	}

	return info, nil
}
