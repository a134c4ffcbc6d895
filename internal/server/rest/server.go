// Package rest is the HTTP surface of the bookmark backend: routing, bearer
// authentication, request validation and the error-to-status mapping.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/logging"
	"github.com/dmitrijs2005/gophmarks/internal/server/auth"
	"github.com/dmitrijs2005/gophmarks/internal/server/models"
	"github.com/dmitrijs2005/gophmarks/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

type UserService interface {
	GetMe(ctx context.Context, userID string) (*models.User, error)
	Edit(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error)
}

type BookmarkService interface {
	Create(ctx context.Context, userID string, in services.NewBookmark) (*models.Bookmark, error)
	List(ctx context.Context, userID string) ([]*models.Bookmark, error)
	Get(ctx context.Context, userID, id string) (*models.Bookmark, error)
	Edit(ctx context.Context, userID, id string, patch models.BookmarkPatch) (*models.Bookmark, error)
	Delete(ctx context.Context, userID, id string) (*models.Bookmark, error)
	Export(ctx context.Context, userID string) (*services.Export, error)
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Pinger reports whether the database answers. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the handlers call into. DB may be nil, in
// which case /healthz only reports that the process is up.
type Deps struct {
	Auth      AuthService
	Users     UserService
	Bookmarks BookmarkService
	Tokens    TokenParser
	DB        Pinger

	CORSAllowedOrigins []string
}

type Server struct {
	address  string
	logger   logging.Logger
	deps     Deps
	validate *validator.Validate
	handler  http.Handler
}

func NewServer(address string, l logging.Logger, deps Deps) *Server {
	s := &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		deps:     deps,
		validate: newValidator(),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodPost, "/auth/signup", s.signUp)
	router.HandlerFunc(http.MethodPost, "/auth/signin", s.signIn)

	router.Handler(http.MethodGet, "/users/me", s.requireAuth(s.getMe))
	router.Handler(http.MethodPatch, "/users", s.requireAuth(s.editUser))

	router.Handler(http.MethodPost, "/bookmarks", s.requireAuth(s.createBookmark))
	router.Handler(http.MethodGet, "/bookmarks", s.requireAuth(s.listBookmarks))
	router.Handler(http.MethodPost, "/bookmarks/export", s.requireAuth(s.exportBookmarks))
	router.Handler(http.MethodGet, "/bookmarks/:id", s.requireAuth(s.getBookmark))
	router.Handler(http.MethodPatch, "/bookmarks/:id", s.requireAuth(s.editBookmark))
	router.Handler(http.MethodDelete, "/bookmarks/:id", s.requireAuth(s.deleteBookmark))

	router.HandlerFunc(http.MethodGet, "/healthz", s.health)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		logging.FromContext(r.Context()).Error(r.Context(), "handler panic", "panic", v)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}

	origins := s.deps.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
	})

	return s.accessLog(c.Handler(router))
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
