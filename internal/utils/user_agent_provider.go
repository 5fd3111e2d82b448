package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import "strings"

// UserAgentProvider supplies the User-Agent header for outgoing requests.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// ProductUserAgentProvider returns a User-Agent fixed at construction time.
type ProductUserAgentProvider struct {
	// userAgent is the User-Agent string to return.
	userAgent string
}

// NewProductUserAgentProvider returns a provider that appends a product token
// such as "ytm-grabber/0.1.0" to a browser User-Agent.
// An empty version leaves the base untouched.
func NewProductUserAgentProvider(base, product, version string) UserAgentProvider {
	parts := make([]string, 0, 2) //nolint:mnd // Base and product token.

	if base = strings.TrimSpace(base); base != "" {
		parts = append(parts, base)
	}

	if product != "" && version != "" {
		parts = append(parts, product+"/"+version)
	}

	return &ProductUserAgentProvider{userAgent: strings.Join(parts, " ")}
}

// GetUserAgent returns a User-Agent string.
func (p *ProductUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}
