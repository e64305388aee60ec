package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// RegisterRoutes registers the link and redirect routes with per-endpoint
// auth and rate limit configuration.
func RegisterRoutes(api huma.API, links *LinkHandler, redirect *RedirectHandler) {
	// Write path gets strict limits; a client minting codes in a loop burns
	// through the shared code space.
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short link",
		Description:   "Shortens a URL for the authenticated owner. Mode 'reuse' returns the owner's existing link for the same URL.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			auth.MetadataKey: true,
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, links.CreateShortLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List short links",
		Description: "Lists the authenticated owner's links, most recent first.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, links.ListLinks)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Link statistics",
		Description: "Lists the authenticated owner's links ordered by click count.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, links.Stats)

	// Redirect is public and read-heavy; limits stay loose.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the URL behind the short code and records the visit asynchronously.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, redirect.Redirect)
}
