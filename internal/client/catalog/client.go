package catalog

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/machinebox/graphql"

	"github.com/oshokin/ytm-grabber/internal/config"
	"github.com/oshokin/ytm-grabber/internal/logger"
	http_transport "github.com/oshokin/ytm-grabber/internal/transport/http"
	"github.com/oshokin/ytm-grabber/internal/utils"
	"github.com/oshokin/ytm-grabber/internal/version"
)

// Client defines the operations of the remote catalog.
type Client interface {
	// DownloadFromURL downloads content such as artwork from the specified URL.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
	// FetchTrack opens the audio stream at the specified URL.
	FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error)
	// ResolveAlbum returns the album with its ordered track list.
	ResolveAlbum(ctx context.Context, albumID string) (*Album, error)
	// ResolveTrackSource returns a fresh stream location for the track in the requested format.
	ResolveTrackSource(ctx context.Context, track *Track, format AudioFormat) (*StreamSource, error)
}

// ClientImpl implements the Client interface over HTTP and GraphQL.
type ClientImpl struct {
	// baseURL is the base URL for API requests.
	baseURL string
	// httpClient performs metadata requests, bounded by a timeout.
	httpClient *http.Client
	// streamClient performs audio and artwork requests; only the context bounds them.
	streamClient *http.Client
	// graphQLClient is the GraphQL client for album queries.
	graphQLClient *graphql.Client
	// albumsCache caches resolved albums by ID.
	albumsCache *lru.Cache[string, *Album]
}

const (
	// catalogGraphQLURI is the URI path of the GraphQL endpoint.
	catalogGraphQLURI = "api/v1/graphql"
	// catalogStreamURI is the URI path of the stream resolution endpoint.
	catalogStreamURI = "api/tiny/track/stream"
	// albumsCacheSize is the maximum number of albums kept in memory.
	albumsCacheSize = 256
	// productName is appended to the User-Agent of every request.
	productName = "ytm-grabber"
)

// getAlbumQuery fetches one release with its track list.
const getAlbumQuery = `
	query getAlbum($ids: [ID!]!) {
		getReleases(ids: $ids) {
			id
			title
			year
			audioPlaylistId
			artists { name }
			thumbnails { url width height }
			tracks {
				id
				title
				position
				durationSeconds
				videoId
				isAvailable
				artists { name }
				thumbnails { url width height }
			}
		}
	}
`

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}

	transport := http_transport.NewHeaderInjector(
		http_transport.NewLogTransport(http.DefaultTransport, 0),
		utils.NewProductUserAgentProvider(http_transport.DefaultUserAgent, productName, version.Short()),
		http.Header{"Accept-Language": []string{"en"}},
	)

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   http_transport.DefaultTimeout,
	}

	graphQLURL := baseURL.JoinPath(catalogGraphQLURI)
	graphQLClient := graphql.NewClient(graphQLURL.String(), graphql.WithHTTPClient(httpClient))
	graphQLClient.Log = func(s string) { logger.Debug(context.Background(), s) }

	albumsCache, err := lru.New[string, *Album](albumsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create albums cache: %w", err)
	}

	return &ClientImpl{
		baseURL:       baseURL.String(),
		httpClient:    httpClient,
		streamClient:  &http.Client{Transport: transport},
		graphQLClient: graphQLClient,
		albumsCache:   albumsCache,
	}, nil
}

// DownloadFromURL downloads content from the specified URL.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.streamClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}

// FetchTrack opens the audio stream at the specified URL.
func (c *ClientImpl) FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Some stream hosts only answer ranged requests.
	request.Header.Add("Range", "bytes=0-")

	response, err := c.streamClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchTrackResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// ResolveAlbum returns the album with its ordered track list.
// Resolved albums are cached; the track list of an album does not change between lookups.
func (c *ClientImpl) ResolveAlbum(ctx context.Context, albumID string) (*Album, error) {
	if cached, ok := c.albumsCache.Get(albumID); ok {
		logger.Debugf(ctx, "Album cache hit for ID: %s", albumID)

		return cached, nil
	}

	request := graphql.NewRequest(getAlbumQuery)
	request.Var("ids", []string{albumID})

	var response getReleasesResponse
	if err := c.graphQLClient.Run(ctx, request, &response); err != nil {
		return nil, fmt.Errorf("failed to query album %s: %w", albumID, err)
	}

	if len(response.GetReleases) == 0 || response.GetReleases[0] == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlbumNotFound, albumID)
	}

	album := parseAlbum(response.GetReleases[0])
	c.albumsCache.Add(albumID, album)

	logger.Debugf(ctx, "Resolved album %q with %d tracks", album.Title, len(album.Tracks))

	return album, nil
}

// ResolveTrackSource returns a fresh stream location for the track.
// Sources are short-lived, so they are never cached.
func (c *ClientImpl) ResolveTrackSource(
	ctx context.Context,
	track *Track,
	format AudioFormat,
) (*StreamSource, error) {
	if track == nil || track.SourceID == "" {
		return nil, ErrNoSource
	}

	query := url.Values{}
	query.Set("id", track.SourceID)
	query.Set("format", format.String())

	result, err := fetchJSONWithQuery[getStreamResponse](c, ctx, catalogStreamURI, query)
	if err != nil {
		return nil, err
	}

	return parseStreamSource(result.Data.Result, format)
}
