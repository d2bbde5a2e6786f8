package web

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"gymtrack/internal/auth"
	"gymtrack/internal/repository"
)

// Server holds the handler dependencies and the route table.
type Server struct {
	log      zerolog.Logger
	sessions *auth.Sessions
	users    repository.Users
	routines repository.Routines
	logs     repository.Logs
	csrfKey  []byte
	dev      bool
	router   *mux.Router
}

func New(log zerolog.Logger, sessions *auth.Sessions, users repository.Users,
	routines repository.Routines, logs repository.Logs, csrfKey []byte, dev bool) *Server {
	s := &Server{
		log:      log,
		sessions: sessions,
		users:    users,
		routines: routines,
		logs:     logs,
		csrfKey:  csrfKey,
		dev:      dev,
	}
	s.routes()
	return s
}

// Handler wraps the router with CSRF protection for all form posts.
func (s *Server) Handler() http.Handler {
	protect := csrf.Protect(s.csrfKey,
		csrf.Secure(!s.dev),
		csrf.FieldName("csrf_token"),
	)
	return protect(s.router)
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.sessions.RequireLogin)
	authed.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/logs/new", s.handleLogForm).Methods(http.MethodGet)
	authed.HandleFunc("/logs/new", s.handleLogCreate).Methods(http.MethodPost)
	authed.HandleFunc("/logs/{id}/edit", s.handleLogForm).Methods(http.MethodGet)
	authed.HandleFunc("/logs/{id}/edit", s.handleLogUpdate).Methods(http.MethodPost)
	authed.HandleFunc("/logs/{id}/delete", s.handleLogDelete).Methods(http.MethodPost)
	authed.HandleFunc("/routines", s.handleRoutines).Methods(http.MethodGet)
	authed.HandleFunc("/routines/new", s.handleRoutineForm).Methods(http.MethodGet)
	authed.HandleFunc("/routines/new", s.handleRoutineCreate).Methods(http.MethodPost)
	authed.HandleFunc("/routines/{id}/edit", s.handleRoutineForm).Methods(http.MethodGet)
	authed.HandleFunc("/routines/{id}/edit", s.handleRoutineUpdate).Methods(http.MethodPost)
	authed.HandleFunc("/routines/{id}/delete", s.handleRoutineDelete).Methods(http.MethodPost)
	authed.HandleFunc("/progress", s.handleProgress).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})

	s.router = r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
