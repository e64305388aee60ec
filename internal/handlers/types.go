package handlers

import "time"

// LinkItem is the wire shape of a short link. The same shape is used by
// creation, listing, and stats responses.
type LinkItem struct {
	Code        string    `doc:"The short code"              example:"aB3kT9z"                            json:"code"`
	ShortURL    string    `doc:"The full short URL"          example:"http://localhost:8888/aB3kT9z"      json:"shortUrl"`
	OriginalURL string    `doc:"The original URL"            example:"https://example.com/very/long/path" json:"originalUrl"`
	ClickCount  int64     `doc:"Number of recorded visits"   example:"0"                                  json:"clickCount"`
	CreatedAt   time.Time `doc:"Creation time"               json:"createdAt"`
}

// CreateShortLinkRequest is the request for creating a short link.
type CreateShortLinkRequest struct {
	Body struct {
		URL  string `doc:"The URL to shorten"                                example:"https://example.com/very/long/path" json:"url"`
		Mode string `doc:"Registration mode: mint a new code or reuse"       enum:"mint,reuse"                            json:"mode,omitempty" required:"false"`
	}
}

// CreateShortLinkResponse is the response for a successfully created short link.
type CreateShortLinkResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body LinkItem
}

// ListLinksResponse is the response for listing an owner's links.
type ListLinksResponse struct {
	Body struct {
		Links []LinkItem `json:"links"`
	}
}

// RedirectRequest is the request for resolving a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aB3kT9z" path:"code"`
}

// RedirectResponse redirects the caller to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}
