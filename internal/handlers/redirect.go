package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// RedirectHandler serves the hot path: short code in, redirect out.
type RedirectHandler struct {
	resolver *shortlink.Resolver
	logger   *zap.Logger
}

// NewRedirectHandler creates a redirect handler.
func NewRedirectHandler(resolver *shortlink.Resolver, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Redirect resolves the code and answers 302 so clients keep coming back
// through the service and visits keep being counted.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.resolver.Resolve(ctx, shortlink.Code(req.Code))
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("short link not found")
		}

		h.logger.Error("failed to resolve code",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve short link")
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = link.TargetURL

	return resp, nil
}
