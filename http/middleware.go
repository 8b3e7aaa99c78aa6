package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/notes"
)

// IdentityResolver resolves the owner id of an inbound request.
// notes.SignatureVerifier and HeaderResolver implement it.
type IdentityResolver interface {
	Resolve(r *http.Request) (string, error)
}

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner id attached by IdentityMiddleware, or "".
func OwnerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}

// IdentityMiddleware attaches the resolved owner id to the request context.
// A nil resolver lets requests through without an owner, so the business
// functions reject them as unauthenticated. Resolution failures are shaped
// by adapter.
func IdentityMiddleware(resolver IdentityResolver, adapter *Adapter) func(http.Handler) http.Handler {
	if resolver == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := resolver.Resolve(r)
			if err != nil {
				adapter.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
		})
	}
}

// HeaderResolver trusts an upstream gateway that has already authenticated
// the caller and forwards the owner id in Header.
type HeaderResolver struct {
	Header string
}

// Resolve returns the trimmed value of the configured header.
func (h HeaderResolver) Resolve(r *http.Request) (string, error) {
	ownerID := strings.TrimSpace(r.Header.Get(h.Header))
	if ownerID == "" {
		return "", notes.Unauthenticated("User not authenticated")
	}
	return ownerID, nil
}

// RequestLogger logs each request with method, path, status, duration and
// remote address. The level follows the status class.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, slog.String("request_id", reqID))
			}

			switch {
			case status >= 500:
				logger.LogAttrs(r.Context(), slog.LevelError, "request", attrs...)
			case status >= 400:
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request", attrs...)
			default:
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
			}
		})
	}
}
