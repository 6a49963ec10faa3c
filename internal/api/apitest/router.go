package apitest

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(methodNotAllowedResponse)

	s.handle(router, http.MethodPost, "/api/account/login", s.loginHandler)
	s.handle(router, http.MethodPost, "/api/account/register", s.registerHandler)
	s.handle(router, http.MethodGet, "/api/account/properties", s.requireToken(s.accountPropertiesHandler))
	s.handle(router, http.MethodPut, "/api/account/properties/update", s.requireToken(s.updateAccountHandler))
	s.handle(router, http.MethodPut, "/api/account/change_password/", s.requireToken(s.changePasswordHandler))
	// httprouter does not allow the static list and create segments next to
	// :slug, so every blog route shares the wildcard and is dispatched by name.
	blog := make(map[string]http.HandlerFunc)
	s.mount(blog, http.MethodGet, "/api/blog/list", s.requireToken(s.listBlogHandler))
	s.mount(blog, http.MethodPost, "/api/blog/create", s.requireToken(s.createBlogHandler))
	s.mount(blog, http.MethodGet, "/api/blog/:slug/is_author", s.requireToken(s.isAuthorHandler))
	s.mount(blog, http.MethodDelete, "/api/blog/:slug/delete", s.requireToken(s.deleteBlogHandler))
	s.mount(blog, http.MethodPut, "/api/blog/:slug/update", s.requireToken(s.updateBlogHandler))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.HandlerFunc(method, "/api/blog/:slug", dispatchBlog(blog))
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPut} {
		router.HandlerFunc(method, "/api/blog/:slug/:action", dispatchBlog(blog))
	}

	return router
}

// handle registers h under method and path.
func (s *Server) handle(router *httprouter.Router, method, path string, h http.HandlerFunc) {
	router.HandlerFunc(method, path, s.counted(method+" "+path, h))
}

// mount adds h to a dispatch table keyed by its route.
func (s *Server) mount(table map[string]http.HandlerFunc, method, path string, h http.HandlerFunc) {
	route := method + " " + path
	table[route] = s.counted(route, h)
}

// dispatchBlog resolves the route name of a /api/blog request from its
// parameters. Unknown names are answered with 404.
func dispatchBlog(table map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())

		route := r.Method + " /api/blog/" + params.ByName("slug")
		if action := params.ByName("action"); action != "" {
			route = r.Method + " /api/blog/:slug/" + action
		}

		h, ok := table[route]
		if !ok {
			notFoundResponse(w, r)
			return
		}
		h(w, r)
	}
}

// counted counts the request under route, applies the configured delay and
// any override, then hands over to h.
func (s *Server) counted(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[route]++
		delay := s.delay
		o, overridden := s.overrides[route]
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if overridden {
			if o.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(o.status)
			w.Write([]byte(o.body))
			return
		}

		h(w, r)
	}
}
