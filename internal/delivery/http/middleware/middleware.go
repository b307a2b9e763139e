package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	httpLib "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/http"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyIdentity
)

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	v, ok := ctx.Value(ctxKeyIdentity).(models.Identity)
	return v, ok
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, identity)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(httpLib.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(httpLib.HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			log.InfoContext(r.Context(), "http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sr.status),
				slog.Int("bytes", sr.bytes),
				slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

// RequireIdentity reads the identity headers injected by the gateway. A
// request without a name or with an unknown role is rejected with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := models.Identity{
			Name: r.Header.Get(httpLib.HeaderUserName),
			Role: models.Role(r.Header.Get(httpLib.HeaderUserRole)),
		}

		if identity.Name == "" || !identity.Role.Valid() {
			httpLib.WriteJSONError(w, http.StatusUnauthorized, "missing identity", "")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole must run after RequireIdentity.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpLib.WriteJSONError(w, http.StatusUnauthorized, "missing identity", "")
				return
			}

			if identity.Role != role {
				httpLib.WriteJSONError(w, http.StatusForbidden, "forbidden", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
