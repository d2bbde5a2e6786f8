package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "gymtrack"
	userKey     = "loggedInUser"
)

// Sessions wraps the cookie store and owns the login state and flash
// messages that ride on it.
type Sessions struct {
	store sessions.Store
}

func NewSessions(secret []byte, secure bool) *Sessions {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return &Sessions{store: cs}
}

// CurrentUser returns the logged-in username, or "" for anonymous
// requests.
func (s *Sessions) CurrentUser(r *http.Request) string {
	sess, _ := s.store.Get(r, sessionName)
	if u, ok := sess.Values[userKey].(string); ok {
		return u
	}
	return ""
}

// Login records the username on the session.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, username string) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[userKey] = username
	return sess.Save(r, w)
}

// Logout drops the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, userKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Flash queues a one-shot message for the next rendered page.
func (s *Sessions) Flash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := s.store.Get(r, sessionName)
	sess.AddFlash(msg)
	_ = sess.Save(r, w)
}

// Flashes drains and returns the queued messages.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := s.store.Get(r, sessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// RequireLogin redirects anonymous requests to the login page.
func (s *Sessions) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.CurrentUser(r) == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
