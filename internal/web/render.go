package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// mdRenderer escapes raw HTML in notes, so user input cannot inject
// markup.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func (s *Server) funcMap(r *http.Request) template.FuncMap {
	user := s.sessions.CurrentUser(r)
	return template.FuncMap{
		"currentUser": func() string { return user },
		"isLoggedIn":  func() bool { return user != "" },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"formatDate":  func(t time.Time) string { return t.Format("Jan 02, 2006") },
		"add":         func(a, b int) int { return a + b },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}
}

// renderPage renders the named page template inside the layout. The
// flash queue is drained into the page data.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["PageTitle"] = title
	data["CurrentUser"] = s.sessions.CurrentUser(r)
	data["Flashes"] = s.sessions.Flashes(w, r)

	tpl, err := template.New("layout.html").Funcs(s.funcMap(r)).
		ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template parse failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so a failed template never leaves a
	// half-written page behind a 200.
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	tpl, err := template.New("layout.html").Funcs(s.funcMap(r)).
		ParseFS(templatesFS, "templates/layout.html", "templates/error.html")
	if err != nil {
		s.log.Error().Err(err).Msg("error template parse failed")
		return
	}
	data := map[string]any{
		"PageTitle":   "Error",
		"CurrentUser": s.sessions.CurrentUser(r),
		"Flashes":     []string(nil),
		"Status":      status,
		"Message":     message,
	}
	if err := tpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("error template render failed")
	}
}

// internalError logs the real error and shows a generic page.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
}
