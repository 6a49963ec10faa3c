package apitest

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type contextKey string

const accountContextKey = contextKey("account")

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		account := s.accountByToken(r)
		s.mu.Unlock()

		if account == nil {
			invalidTokenResponse(w, r)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), accountContextKey, account)))
	}
}

func accountFromContext(r *http.Request) *Account {
	a, _ := r.Context().Value(accountContextKey).(*Account)
	return a
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	a, ok := s.accounts[email]
	s.mu.Unlock()

	if !ok || a.Password != password {
		writeJSON(w, http.StatusOK, envelope{"response": "Error", "error_message": "Invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"response": "Successfully authenticated.",
		"pk":       a.Pk,
		"email":    a.Email,
		"token":    a.Token,
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if password != r.PostFormValue("password2") {
		writeJSON(w, http.StatusOK, envelope{"response": "Error", "error_message": "Passwords must match."})
		return
	}

	s.mu.Lock()
	_, taken := s.accounts[email]
	s.mu.Unlock()
	if taken {
		writeJSON(w, http.StatusOK, envelope{"response": "Error", "error_message": "That email is already in use."})
		return
	}

	a := s.AddAccount(email, username, password)
	writeJSON(w, http.StatusOK, envelope{
		"response": "successfully registered new user.",
		"email":    a.Email,
		"username": a.Username,
		"pk":       a.Pk,
		"token":    a.Token,
	})
}

func (s *Server) accountPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)
	writeJSON(w, http.StatusOK, envelope{"pk": a.Pk, "email": a.Email, "username": a.Username})
}

func (s *Server) updateAccountHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)
	email := r.PostFormValue("email")
	username := r.PostFormValue("username")

	s.mu.Lock()
	delete(s.accounts, a.Email)
	a.Email, a.Username = email, username
	s.accounts[email] = a
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope{"response": "Account update success"})
}

func (s *Server) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.PostFormValue("old_password") != a.Password {
		writeJSON(w, http.StatusBadRequest, envelope{"error_message": "Wrong password."})
		return
	}
	if r.PostFormValue("new_password") != r.PostFormValue("confirm_new_password") {
		writeJSON(w, http.StatusBadRequest, envelope{"error_message": "New passwords must match"})
		return
	}

	a.Password = r.PostFormValue("new_password")
	writeJSON(w, http.StatusOK, envelope{"response": "successfully changed password"})
}

func (s *Server) listBlogHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeErrorResponse(w, http.StatusNotFound, "Invalid page.")
			return
		}
		page = n
	}

	s.mu.Lock()
	posts := s.sortedPosts(query.Get("search"), query.Get("ordering"))
	s.mu.Unlock()

	start := (page - 1) * PageSize
	if start > 0 && start >= len(posts) {
		writeErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	end := min(start+PageSize, len(posts))

	results := make([]envelope, 0, end-start)
	for _, p := range posts[start:end] {
		results = append(results, postEnvelope(p))
	}

	writeJSON(w, http.StatusOK, envelope{"results": results})
}

func (s *Server) isAuthorHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)
	slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

	s.mu.Lock()
	p, ok := s.posts[slug]
	s.mu.Unlock()

	if !ok {
		notFoundResponse(w, r)
		return
	}
	if p.Username != a.Username {
		writeJSON(w, http.StatusOK, envelope{"response": "You don't have permission to edit that."})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"response": PermissionToEdit})
}

func (s *Server) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)
	slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[slug]
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if p.Username != a.Username {
		writeJSON(w, http.StatusOK, envelope{"response": "You don't have permission to delete that."})
		return
	}

	delete(s.posts, slug)
	writeJSON(w, http.StatusOK, envelope{"response": "deleted"})
}

func (s *Server) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)
	slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.membership {
		writeJSON(w, http.StatusOK, envelope{"response": MembershipRequired})
		return
	}

	p, ok := s.posts[slug]
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if p.Username != a.Username {
		writeJSON(w, http.StatusOK, envelope{"response": "You don't have permission to edit that."})
		return
	}

	p.Title = r.FormValue("title")
	p.Body = r.FormValue("body")
	if img := imageURL(r, p.Slug); img != "" {
		p.Image = img
	}
	p.DateUpdated = time.Now().UTC()

	resp := postEnvelope(p)
	resp["response"] = "updated"
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	a := accountFromContext(r)

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	membership := s.membership
	s.mu.Unlock()

	if membership {
		writeJSON(w, http.StatusOK, envelope{"response": MembershipRequired})
		return
	}

	p := s.AddPost(r.FormValue("title"), r.FormValue("body"), a.Username, time.Now().UTC())

	s.mu.Lock()
	p.Image = imageURL(r, p.Slug)
	resp := postEnvelope(p)
	s.mu.Unlock()

	resp["response"] = "created"
	writeJSON(w, http.StatusOK, resp)
}

func imageURL(r *http.Request, slug string) string {
	file, header, err := r.FormFile("image")
	if err != nil {
		return ""
	}
	defer file.Close()

	ext := ""
	if i := strings.LastIndex(header.Filename, "."); i >= 0 {
		ext = header.Filename[i:]
	}
	return "https://cdn.open-api.xyz/media/" + slug + "-" + uuid.NewString()[:8] + ext
}
