package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
)

// UserHeader selects the acting user. Requests without it act as the default user.
const UserHeader = "X-User-Email"

type ownerKey struct{}

func ownerFrom(ctx context.Context) pool.User {
	user, _ := ctx.Value(ownerKey{}).(pool.User)
	return user
}

type ownerResolver interface {
	Resolve(ctx context.Context, email string) (pool.User, error)
}

func withOwner(users ownerResolver, defaultEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := strings.TrimSpace(r.Header.Get(UserHeader))
			if email == "" {
				email = defaultEmail
			}

			user, err := users.Resolve(r.Context(), email)
			if err != nil {
				if errs.IsNotFound(err) {
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unknown user"})
					return
				}
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, user)
			ctx = logging.WithAttrs(ctx, slog.String("user_id", user.ID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger attaches request attributes to the context logger and logs completion.
func requestLogger(base context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.WithLogger(r.Context(), logging.Logger(base))
			ctx = logging.WithAttrs(ctx,
				slog.String("component", "transport.http"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			logging.Debug(ctx, "request served",
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
