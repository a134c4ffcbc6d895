package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/logging"
	"github.com/dmitrijs2005/gophmarks/internal/server/auth"
	"github.com/google/uuid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// accessLog tags every request with an id, puts a request-scoped logger in
// its context and logs the outcome.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(common.RequestIDHeaderName)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, reqID)

		l := s.logger.With("request_id", reqID)
		ctx := logging.WithLogger(r.Context(), l)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		l.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

// requireAuth rejects requests without a valid bearer token and otherwise
// stores the token's identity in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			writeError(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		id, err := s.deps.Tokens.Parse(token)
		if err != nil {
			logging.FromContext(r.Context()).Debug(r.Context(), "token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// identity returns the caller set by requireAuth. Handlers behind
// requireAuth can rely on it; the false branch fails closed.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
	}
	return id, ok
}

func logFrom(r *http.Request) logging.Logger {
	return logging.FromContext(r.Context())
}
