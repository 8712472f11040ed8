package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	tmdb "github.com/cyruzin/golang-tmdb"

	"marquee/internal/utils"
)

type TMDBClient struct {
	apiKey   string
	language string
	client   *tmdb.Client
	logger   *utils.Logger
}

// NewTMDBClient builds a catalog client. baseURL, when set, sends every
// request to that scheme and host instead of the public API.
func NewTMDBClient(apiKey, language, baseURL string, timeout time.Duration, logger *utils.Logger) (*TMDBClient, error) {
	transport := http.DefaultTransport
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid catalog base URL %q", baseURL)
		}
		transport = &rewriteTransport{target: u, next: http.DefaultTransport}
	}

	t := &TMDBClient{
		apiKey:   apiKey,
		language: language,
		logger:   logger.With("component", "tmdb"),
	}
	// Without a key every call fails with ErrAPIKeyMissing.
	if apiKey == "" {
		return t, nil
	}

	c, err := tmdb.Init(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init TMDB client: %w", err)
	}
	c.SetClientConfig(http.Client{
		Timeout:   timeout,
		Transport: transport,
	})
	t.client = c
	return t, nil
}

func (t *TMDBClient) IsConfigured() bool {
	return t.apiKey != ""
}

func (t *TMDBClient) options() map[string]string {
	opts := map[string]string{}
	if t.language != "" {
		opts["language"] = t.language
	}
	return opts
}

func (t *TMDBClient) ready(ctx context.Context) error {
	if !t.IsConfigured() {
		return ErrAPIKeyMissing
	}
	return ctx.Err()
}

func (t *TMDBClient) Search(ctx context.Context, query string) ([]MediaSummary, error) {
	if err := t.ready(ctx); err != nil {
		return nil, err
	}

	opts := t.options()
	opts["include_adult"] = "false"

	resp, err := t.client.GetSearchMulti(query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search TMDB: %w", err)
	}

	results := make([]MediaSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		// unknown discriminators (e.g. "person") pass through for the caller to filter
		mediaType := MediaType(r.MediaType)
		if parsed, err := ParseMediaType(r.MediaType); err == nil {
			mediaType = parsed
		}
		title := r.Title
		if title == "" {
			title = r.Name
		}
		results = append(results, MediaSummary{
			ID:         int(r.ID),
			Title:      title,
			PosterPath: r.PosterPath,
			MediaType:  mediaType,
		})
	}

	t.logger.Debug("TMDB search", query, "returned", len(results), "results")
	return results, nil
}

func (t *TMDBClient) Trending(ctx context.Context, mediaType MediaType) ([]MediaSummary, error) {
	if !mediaType.Playable() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	if err := t.ready(ctx); err != nil {
		return nil, err
	}

	resp, err := t.client.GetTrending(mediaType.Path(), "week", t.options())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TMDB trending %s: %w", mediaType, err)
	}

	results := make([]MediaSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = r.Name
		}
		results = append(results, MediaSummary{
			ID:         int(r.ID),
			Title:      title,
			PosterPath: r.PosterPath,
			MediaType:  mediaType,
		})
	}
	return results, nil
}

func (t *TMDBClient) Details(ctx context.Context, mediaType MediaType, id int) (*MediaDetails, error) {
	if !mediaType.Playable() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	if err := t.ready(ctx); err != nil {
		return nil, err
	}

	opts := t.options()
	opts["append_to_response"] = "videos"

	if mediaType == MediaTypeMovie {
		movie, err := t.client.GetMovieDetails(id, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch TMDB movie %d: %w", id, err)
		}
		return &MediaDetails{
			MediaSummary: MediaSummary{
				ID:         int(movie.ID),
				Title:      movie.Title,
				PosterPath: movie.PosterPath,
				MediaType:  MediaTypeMovie,
			},
			Overview: movie.Overview,
		}, nil
	}

	show, err := t.client.GetTVDetails(id, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TMDB series %d: %w", id, err)
	}
	return &MediaDetails{
		MediaSummary: MediaSummary{
			ID:         int(show.ID),
			Title:      show.Name,
			PosterPath: show.PosterPath,
			MediaType:  MediaTypeSeries,
		},
		Overview: show.Overview,
	}, nil
}

// rewriteTransport points requests built for the public API at another host.
type rewriteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return rt.next.RoundTrip(r)
}
