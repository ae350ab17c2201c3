// Package flash keeps one-shot messages in a short-lived cookie between a redirect and the next page.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const cookieName = "flash"

// Categories used by the templates.
const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Danger  = "danger"
)

type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Add appends a message to the pending flash cookie.
func Add(c *gin.Context, category, text string) {
	msgs := pending(c)
	msgs = append(msgs, Message{Category: category, Text: text})
	c.Set(cookieName, msgs)
	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the messages carried by the request and clears the cookie.
func Pop(c *gin.Context) []Message {
	ck, err := c.Request.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	return decode(ck.Value)
}

func pending(c *gin.Context) []Message {
	if v, ok := c.Get(cookieName); ok {
		if msgs, ok := v.([]Message); ok {
			return msgs
		}
	}
	return nil
}

func decode(v string) []Message {
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
