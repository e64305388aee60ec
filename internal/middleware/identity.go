package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/auth"
	"go.uber.org/zap"
)

// Identity extracts the owner identity from the Authorization header for
// operations whose metadata carries auth.MetadataKey. The redirect endpoint
// stays public; everything owner-scoped rejects requests without a usable
// token before the handler runs.
func Identity(api huma.API, verifier *auth.Verifier, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !operationRequiresOwner(ctx) {
			next(ctx)

			return
		}

		owner, err := verifier.OwnerFromToken(bearerToken(ctx))
		if err != nil {
			logger.Debug("rejected unauthenticated request",
				zap.String("path", ctx.URL().Path),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")

			return
		}

		newCtx := auth.ContextWithOwner(ctx.Context(), owner)
		next(huma.WithContext(ctx, newCtx))
	}
}

func operationRequiresOwner(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	required, ok := op.Metadata[auth.MetadataKey].(bool)

	return ok && required
}

func bearerToken(ctx huma.Context) string {
	header := ctx.Header("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
