package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const tokenKey ctxKey = "token"

func tokenFromContext(ctx context.Context) (*auth.ParsedToken, bool) {
	t, ok := ctx.Value(tokenKey).(*auth.ParsedToken)
	return t, ok && t != nil
}

// requestLogger tags the context with the request id and logs one line per
// request once the response is written.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context())))

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}

// bearerAuth verifies the bearer token and stores it in the request context.
func (s *HTTPServer) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			s.logger.Debug(r.Context(), "token rejected", "error", err.Error())
			unauthorized(w, "Unauthorized")
			return
		}

		token, err := s.verifier.Parse(raw)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			s.logger.Debug(r.Context(), "token rejected", "error", err.Error())
			unauthorized(w, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey, token)))
	})
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: no bearer token", common.ErrorUnauthorized)
	}
	return raw, nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, msg)
}
