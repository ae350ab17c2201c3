package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement/internal/apperr"
	"placement/internal/auth"
	"placement/internal/portal"
	"placement/internal/web/flash"
)

func (s *Server) home(c *gin.Context) {
	s.page(c, http.StatusOK, "home", nil)
}

type registerForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Role     string `form:"role"`
}

func (s *Server) registerPage(c *gin.Context) {
	s.page(c, http.StatusOK, "register", gin.H{"AdminSignup": s.Config.AllowAdminSignup})
}

func (s *Server) register(c *gin.Context) {
	var f registerForm
	_ = c.ShouldBind(&f)
	role, err := auth.ParseRole(f.Role)
	if err != nil {
		s.fail(c, err, "/register")
		return
	}
	if role == auth.RoleAdmin && !s.Config.AllowAdminSignup {
		s.fail(c, apperr.New(apperr.CodeForbidden, "Admin accounts cannot be created from the registration form."), "/register")
		return
	}
	_, err = s.Accounts.Register(c.Request.Context(), portal.RegisterInput{
		Username: f.Username, Email: f.Email, Password: f.Password, Role: string(role),
	})
	if err != nil {
		s.fail(c, err, "/register")
		return
	}
	flash.Add(c, flash.Success, "Registration successful! Please log in.")
	c.Redirect(http.StatusFound, "/login")
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Server) loginPage(c *gin.Context) {
	if claims, ok := auth.Current(c); ok {
		c.Redirect(http.StatusFound, claims.Role.Home())
		return
	}
	s.page(c, http.StatusOK, "login", nil)
}

// login sets the session cookie only after the password checks out.
func (s *Server) login(c *gin.Context) {
	var f loginForm
	_ = c.ShouldBind(&f)
	u, err := s.Accounts.Authenticate(c.Request.Context(), f.Email, f.Password)
	if err != nil {
		category := flash.Danger
		if apperr.Is(err, apperr.CodeValidation) {
			category = flash.Warning
		}
		flash.Add(c, category, apperr.Message(err))
		c.Redirect(http.StatusFound, "/login")
		return
	}
	token, exp, err := auth.IssueSession(u.ID, u.Username, u.Role, s.Config.SecretKey, s.Config.SessionTTL)
	if err != nil {
		s.fail(c, apperr.Wrap(apperr.CodeInternal, "issue session", err), "/login")
		return
	}
	auth.SetCookie(c, token, exp, s.Config.Production())
	flash.Add(c, flash.Success, "Welcome back, "+u.Username+"!")
	c.Redirect(http.StatusFound, u.Role.Home())
}

func (s *Server) logout(c *gin.Context) {
	auth.ClearCookie(c)
	flash.Add(c, flash.Info, "You have been logged out.")
	c.Redirect(http.StatusFound, "/login")
}
