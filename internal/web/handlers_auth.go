package web

import (
	"errors"
	"net/http"
	"strings"

	"gymtrack/common"
	"gymtrack/internal/auth"
	"gymtrack/internal/repository"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if s.sessions.CurrentUser(r) != "" {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	s.renderPage(w, r, "home.html", "Home", nil)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.CurrentUser(r) != "" {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	s.renderPage(w, r, "register.html", "Register", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if err := auth.ValidateUsername(username); err != nil {
		s.flashAndBack(w, r, err.Error(), "/register")
		return
	}
	// The shared template owner is provisioned out of band, never via
	// the registration form.
	if strings.ToLower(username) == common.AdminUser {
		s.flashAndBack(w, r, "That username is reserved", "/register")
		return
	}
	if err := auth.ValidateEmail(email); err != nil {
		s.flashAndBack(w, r, err.Error(), "/register")
		return
	}
	if err := auth.ValidatePassword(password); err != nil {
		s.flashAndBack(w, r, err.Error(), "/register")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	user := &common.User{Username: username, Email: email, Password: hash}
	err = s.users.Create(r.Context(), user)
	if errors.Is(err, repository.ErrDuplicate) {
		s.flashAndBack(w, r, "Username already taken", "/register")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := s.sessions.Login(w, r, user.Username); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info().Str("user", user.Username).Msg("registered")
	s.sessions.Flash(w, r, "Registration successful. Welcome, "+user.Username+"!")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.CurrentUser(r) != "" {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	s.renderPage(w, r, "login.html", "Login", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := s.users.GetByUsername(r.Context(), username)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !auth.VerifyPassword(password, user.Password)) {
		s.log.Info().Str("user", username).Msg("invalid login")
		s.flashAndBack(w, r, "Incorrect username and/or password", "/login")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := s.sessions.Login(w, r, user.Username); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info().Str("user", user.Username).Msg("valid login")
	s.sessions.Flash(w, r, "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, "/profile", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// flashAndBack queues a message and redirects, the post/redirect/get
// pattern every mutation here follows.
func (s *Server) flashAndBack(w http.ResponseWriter, r *http.Request, msg, location string) {
	s.sessions.Flash(w, r, msg)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
