package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophmarks/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := s.deps.Auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := s.deps.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	u, err := s.deps.Users.GetMe(r.Context(), id.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (s *Server) editUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req editUserRequest
	if err := s.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	u, err := s.deps.Users.Edit(r.Context(), id.Subject, req.patch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (s *Server) createBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req createBookmarkRequest
	if err := s.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	b, err := s.deps.Bookmarks.Create(r.Context(), id.Subject, services.NewBookmark{
		Title:       req.Title,
		Link:        req.Link,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logFrom(r).Info(r.Context(), "bookmark created", "bookmark_id", b.ID, "user_id", id.Subject)
	writeJSON(w, http.StatusCreated, newBookmarkResponse(b))
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	list, err := s.deps.Bookmarks.List(r.Context(), id.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]bookmarkResponse, 0, len(list))
	for _, b := range list {
		out = append(out, newBookmarkResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	b, err := s.deps.Bookmarks.Get(r.Context(), id.Subject, bookmarkID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newBookmarkResponse(b))
}

func (s *Server) editBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req editBookmarkRequest
	if err := s.decode(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	b, err := s.deps.Bookmarks.Edit(r.Context(), id.Subject, bookmarkID(r), req.patch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newBookmarkResponse(b))
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	b, err := s.deps.Bookmarks.Delete(r.Context(), id.Subject, bookmarkID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logFrom(r).Info(r.Context(), "bookmark deleted", "bookmark_id", b.ID, "user_id", id.Subject)
	writeJSON(w, http.StatusOK, newBookmarkResponse(b))
}

func (s *Server) exportBookmarks(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	exp, err := s.deps.Bookmarks.Export(r.Context(), id.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{URL: exp.URL, Key: exp.Key, ExpiresAt: exp.ExpiresAt})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			logFrom(r).Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func bookmarkID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}
