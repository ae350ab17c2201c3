// Package web serves the portal's HTML pages and JSON endpoints.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"placement/internal/apperr"
	"placement/internal/assistant"
	"placement/internal/auth"
	"placement/internal/config"
	"placement/internal/httpmiddleware"
	"placement/internal/jobfeed"
	"placement/internal/logger"
	"placement/internal/portal"
	"placement/internal/resume"
	"placement/internal/store"
	"placement/internal/web/flash"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators the handlers call.
type Deps struct {
	Config       config.App
	DB           *store.DB
	Redis        *store.Redis
	Accounts     *portal.Accounts
	Board        *portal.Board
	Applications *portal.Applications
	Feedback     *portal.FeedbackService
	ChatLogs     *portal.ChatLogs
	Reports      *portal.Reports
	Resumes      *portal.Resumes
	Intake       *resume.Intake
	Jobs         *jobfeed.Client
	Assistant    *assistant.Assistant
	Avatars      AvatarStore
	Limiter      httpmiddleware.Limiter
}

type Server struct {
	Deps
	tmpl *template.Template
}

func NewServer(d Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{Deps: d, tmpl: tmpl}, nil
}

var funcs = template.FuncMap{
	"avatarURL": func(name string) string {
		if name == "" {
			return ""
		}
		if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
			return name
		}
		return "/uploads/profile_pics/" + name
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006 15:04")
	},
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", max(5-n, 0))
	},
	"statuses": func() []portal.Status { return portal.Statuses },
	"details":  resume.DecodeDetails,
}

// page renders a named template with the session and pending flashes merged into data.
func (s *Server) page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if claims, ok := auth.Current(c); ok {
		data["Session"] = claims
	}
	data["Flashes"] = flash.Pop(c)
	data["Page"] = name
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		logger.From(c.Request.Context()).Error("render failed", "template", name, "err", err)
	}
}

// fail answers with a flash and redirect for pages, or a JSON error for API callers.
func (s *Server) fail(c *gin.Context, err error, redirectTo string) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		logger.From(c.Request.Context()).Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	category := flash.Warning
	if code == apperr.CodeInternal || code == apperr.CodeForbidden {
		category = flash.Danger
	}
	flash.Add(c, category, apperr.Message(err))
	c.Redirect(http.StatusFound, redirectTo)
}

func jsonError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		logger.From(c.Request.Context()).Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(apperr.HTTPStatus(code), gin.H{"error": apperr.Message(err)})
}

func (s *Server) notFound(c *gin.Context) {
	s.page(c, http.StatusNotFound, "not_found", nil)
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func currentUserID(c *gin.Context) int64 {
	if claims, ok := auth.Current(c); ok {
		return claims.UserID()
	}
	return 0
}

// back returns the referring path on this site, or fallback.
func back(c *gin.Context, fallback string) string {
	ref := c.Request.Referer()
	if i := strings.Index(ref, "://"); i >= 0 {
		ref = ref[i+3:]
		if j := strings.IndexByte(ref, '/'); j >= 0 && ref[:j] == c.Request.Host {
			return ref[j:]
		}
		return fallback
	}
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return ref
	}
	return fallback
}

func nowUTC() time.Time { return time.Now().UTC() }

func tooLarge(err error) bool { return httpmiddleware.IsTooLarge(err) }

func bindError(err error) error {
	if tooLarge(err) {
		return apperr.New(apperr.CodeTooLarge, "File too large.")
	}
	return apperr.New(apperr.CodeValidation, "Invalid form submission.")
}
