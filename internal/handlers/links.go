package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/clicks"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// LinkHandler handles the owner-scoped link operations.
type LinkHandler struct {
	registration   *shortlink.RegistrationService
	registry       shortlink.Registry
	baseURL        string
	publishCreated messaging.Publish[clicks.LinkCreatedEvent]
	logger         *zap.Logger
}

// NewLinkHandler creates a link handler.
func NewLinkHandler(
	registration *shortlink.RegistrationService,
	registry shortlink.Registry,
	baseURL string,
	publishCreated messaging.Publish[clicks.LinkCreatedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		registration:   registration,
		registry:       registry,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

func (h *LinkHandler) CreateShortLink(ctx context.Context, req *CreateShortLinkRequest) (*CreateShortLinkResponse, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	mode := shortlink.Mode(req.Body.Mode)
	if mode == "" {
		mode = shortlink.ModeMint
	}

	if mode != shortlink.ModeMint && mode != shortlink.ModeReuse {
		return nil, huma.Error400BadRequest("invalid mode: must be 'mint' or 'reuse'")
	}

	link, err := h.registration.Register(ctx, req.Body.URL, owner, mode)
	if err != nil {
		var validationErr *shortlink.ValidationError
		if errors.As(err, &validationErr) {
			return nil, huma.Error400BadRequest(validationErr.Error())
		}

		if errors.Is(err, shortlink.ErrAllocationExhausted) {
			h.logger.Error("code allocation exhausted", zap.Error(err))

			return nil, huma.Error503ServiceUnavailable("could not allocate a short code")
		}

		h.logger.Error("failed to register link", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create short link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &clicks.LinkCreatedEvent{
		Code:        string(link.Code),
		OriginalURL: link.TargetURL,
		OwnerID:     string(link.OwnerID),
		Mode:        string(mode),
		CreatedAt:   link.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishCreated(event); err != nil {
		h.logger.Error("failed to publish created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &CreateShortLinkResponse{Status: http.StatusCreated}
	resp.Body = h.linkItem(link)
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	links, err := h.ownerLinks(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = h.linkItems(links)

	return resp, nil
}

// Stats returns the owner's links ordered by click count, busiest first.
func (h *LinkHandler) Stats(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	links, err := h.ownerLinks(ctx)
	if err != nil {
		return nil, err
	}

	// ListByOwner is already sorted by creation time, so ties stay newest first.
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].ClickCount > links[j].ClickCount
	})

	resp := &ListLinksResponse{}
	resp.Body.Links = h.linkItems(links)

	return resp, nil
}

func (h *LinkHandler) ownerLinks(ctx context.Context) ([]*shortlink.ShortLink, error) {
	owner, err := auth.OwnerFromContext(ctx)
	if err != nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	links, err := h.registry.ListByOwner(ctx, owner)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	return links, nil
}

func (h *LinkHandler) linkItems(links []*shortlink.ShortLink) []LinkItem {
	items := make([]LinkItem, 0, len(links))
	for _, link := range links {
		items = append(items, h.linkItem(link))
	}

	return items
}

func (h *LinkHandler) linkItem(link *shortlink.ShortLink) LinkItem {
	return LinkItem{
		Code:        string(link.Code),
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, link.Code),
		OriginalURL: link.TargetURL,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
	}
}
