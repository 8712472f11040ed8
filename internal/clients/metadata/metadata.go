package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAPIKeyMissing        = errors.New("catalog API key is not configured")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// Catalog is the interface for the remote movie/series catalog.
type Catalog interface {
	// Search runs a multi-type search. Results keep every type the catalog
	// returns (including people); callers filter.
	Search(ctx context.Context, query string) ([]MediaSummary, error)
	// Trending returns the weekly trending list for one media type.
	Trending(ctx context.Context, mediaType MediaType) ([]MediaSummary, error)
	Details(ctx context.Context, mediaType MediaType, id int) (*MediaDetails, error)
}

type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// ParseMediaType accepts our own names plus the catalog's "tv".
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaTypeMovie, nil
	case "series", "tv":
		return MediaTypeSeries, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, s)
}

// Playable reports whether the type can be selected and embedded.
func (t MediaType) Playable() bool {
	return t == MediaTypeMovie || t == MediaTypeSeries
}

// Path is the URL segment used by the catalog and the player for this type.
func (t MediaType) Path() string {
	if t == MediaTypeSeries {
		return "tv"
	}
	return string(t)
}

func (t MediaType) Label() string {
	switch t {
	case MediaTypeMovie:
		return "Movie"
	case MediaTypeSeries:
		return "Series"
	}
	return string(t)
}

// MediaSummary is a search or trending entry.
type MediaSummary struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path,omitempty"`
	MediaType  MediaType `json:"media_type"`
}

// MediaDetails is the extended record fetched for the current selection.
type MediaDetails struct {
	MediaSummary
	Overview string `json:"overview,omitempty"`
}

// Image width buckets served by the image CDN.
const (
	ThumbnailSize = "w92"
	PosterSize    = "w300"
)

// ImageURL builds a CDN URL for posterPath. An empty path yields "".
func ImageURL(base, size, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + size + "/" + strings.TrimPrefix(posterPath, "/")
}
