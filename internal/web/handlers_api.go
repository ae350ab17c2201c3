package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"placement/internal/apperr"
	"placement/internal/assistant"
	"placement/internal/logger"
)

func (s *Server) apiSearchPlacements(c *gin.Context) {
	results, err := s.Board.LiveSearch(c.Request.Context(), c.Query("q"))
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) apiJobs(c *gin.Context) {
	jobs := s.Jobs.Search(c.Request.Context(), c.Query("q"), c.Query("location"))
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) askPage(c *gin.Context) {
	var history any
	if uid := currentUserID(c); uid > 0 {
		logs, err := s.ChatLogs.ListForUser(c.Request.Context(), uid)
		if err != nil {
			logger.From(c.Request.Context()).Warn("load chat history", "err", err)
		}
		history = logs
	}
	s.page(c, http.StatusOK, "ask", gin.H{"History": history, "Enabled": s.Assistant.Enabled()})
}

type askRequest struct {
	Question string `json:"question"`
	Message  string `json:"message"`
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if c.ContentType() == "application/json" {
		_ = c.ShouldBindJSON(&req)
	} else {
		req.Question = c.PostForm("question")
	}
	s.answer(c, req.Question)
}

// chat is the older endpoint name; it takes {"message": ...}.
func (s *Server) chat(c *gin.Context) {
	var req askRequest
	_ = c.ShouldBindJSON(&req)
	q := req.Message
	if q == "" {
		q = req.Question
	}
	s.answer(c, q)
}

func (s *Server) answer(c *gin.Context, question string) {
	ctx := c.Request.Context()
	question = strings.TrimSpace(question)
	if question == "" {
		jsonError(c, apperr.New(apperr.CodeValidation, "Please enter a question."))
		return
	}

	askCtx, cancel := ctx, context.CancelFunc(func() {})
	if budget := askBudget(s.Config.WriteTimeout); budget > 0 {
		askCtx, cancel = context.WithTimeout(ctx, budget)
	}
	res := s.Assistant.Ask(askCtx, question)
	cancel()
	switch {
	case res.NotConfigured():
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": res.Error})
		return
	case res.Error != "":
		c.JSON(http.StatusBadGateway, gin.H{"error": res.Error})
		return
	}

	// history stores the redacted question only
	uid := currentUserID(c)
	if err := s.ChatLogs.Record(ctx, uid, "user", assistant.Redact(question)); err != nil {
		logger.From(ctx).Warn("record chat", "err", err)
	}
	if err := s.ChatLogs.Record(ctx, uid, "assistant", res.Answer); err != nil {
		logger.From(ctx).Warn("record chat", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"answer": res.Answer})
}

// askBudget bounds the whole retry loop so the failure reply still fits in the write deadline.
func askBudget(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return 0
	}
	return writeTimeout - min(writeTimeout/10, 2*time.Second)
}

func (s *Server) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := s.DB.Healthy(ctx)
	body := gin.H{"status": "ok", "db": dbHealthy}
	status := http.StatusOK
	if s.Redis != nil {
		redisHealthy := s.Redis.Healthy(ctx)
		body["redis"] = redisHealthy
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
	}
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
