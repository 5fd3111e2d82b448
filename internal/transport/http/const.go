package http

import "time"

const (
	// DefaultTimeout bounds metadata requests to the catalog.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the User-Agent string sent to the catalog.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" //nolint: lll

	// DefaultMaxLogLength caps the size of a logged request or response dump.
	DefaultMaxLogLength = 64 * 1024
)
