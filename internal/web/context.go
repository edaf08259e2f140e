package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/dsr/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
// The user is already on the context, set by the auth middleware.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
