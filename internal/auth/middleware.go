package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"placement/internal/web/flash"
)

const (
	CookieName = "session"
	claimsKey  = "claims"
)

// Session attaches claims from a valid session cookie. It never aborts.
func Session(signingKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
			if claims, err := ParseSession(tok, signingKey); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// Current returns the session of the request, if any.
func Current(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// RequireLogin redirects anonymous page requests to /login and answers 401 on /api.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Current(c); ok {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		flash.Add(c, flash.Warning, "Please log in first.")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireRole enforces the role after RequireLogin.
func RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Current(c)
		if !ok {
			RequireLogin()(c)
			return
		}
		if claims.Role != role {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			flash.Add(c, flash.Danger, "Access denied!")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetCookie stores the session token on the response.
func SetCookie(c *gin.Context, token string, exp time.Time, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
