package catalog

// getReleasesResponse is the GraphQL payload of the getReleases query.
type getReleasesResponse struct {
	GetReleases []*releaseNode `json:"getReleases"`
}

type releaseNode struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Year            int           `json:"year"`
	AudioPlaylistID string        `json:"audioPlaylistId"`
	Artists         []*artistNode `json:"artists"`
	Thumbnails      []*imageNode  `json:"thumbnails"`
	Tracks          []*trackNode  `json:"tracks"`
}

type trackNode struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Position        int           `json:"position"`
	DurationSeconds int           `json:"durationSeconds"`
	VideoID         string        `json:"videoId"`
	IsAvailable     *bool         `json:"isAvailable"`
	Artists         []*artistNode `json:"artists"`
	Thumbnails      []*imageNode  `json:"thumbnails"`
}

type artistNode struct {
	Name string `json:"name"`
}

type imageNode struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// getStreamResponse is the REST payload of the stream resolution endpoint.
type getStreamResponse struct {
	Result *streamNode `json:"result"`
}

type streamNode struct {
	Stream string `json:"stream"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
	// Expire is a UNIX timestamp in seconds.
	Expire int64 `json:"expire"`
}

// fetchJSONResult pairs a decoded body with the HTTP status it arrived with.
type fetchJSONResult[T any] struct {
	Data       *T
	StatusCode int
}
