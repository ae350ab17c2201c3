package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"placement/internal/assistant"
	"placement/internal/cloudinary"
	"placement/internal/config"
	"placement/internal/httpmiddleware"
	"placement/internal/jobfeed"
	"placement/internal/logger"
	"placement/internal/portal"
	"placement/internal/resume"
	"placement/internal/store"
	"placement/internal/web"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Production())

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		slog.Error("http server failed", "err", err)
		os.Exit(1)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return err
	}
	if applied > 0 {
		slog.Info("migrations applied", "count", applied, "dialect", db.Dialect)
	}
	if seeded, err := db.SeedPlacements(ctx); err != nil {
		slog.Warn("seed placements", "err", err)
	} else if seeded > 0 {
		slog.Info("sample placements seeded", "count", seeded)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitPerMin > 0 {
		if redisClient != nil {
			limiter = httpmiddleware.NewRedisLimiter(redisClient.Raw(), cfg.RateLimitPerMin, time.Minute)
		} else {
			limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
		}
	}

	repo := portal.NewRepository(db.Client)
	resumes := portal.NewResumes(repo)
	accounts := portal.NewAccounts(repo)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := accounts.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			slog.Info("bootstrap admin created", "username", cfg.AdminUsername)
		}
	}

	jobs := jobfeed.New(jobfeed.Config{
		AppID:      cfg.AdzunaAppID,
		AppKey:     cfg.AdzunaAppKey,
		Country:    cfg.AdzunaCountry,
		BaseURL:    cfg.AdzunaBaseURL,
		Timeout:    cfg.JobFetchTimeout,
		MaxResults: cfg.JobResults,
		CacheTTL:   cfg.JobCacheTTL,
	}, redisClient.Raw())
	if !jobs.Enabled() {
		slog.Info("external job feed not configured (ADZUNA_APP_ID / ADZUNA_APP_KEY not set)")
	}

	rc := assistant.DefaultRetryConfig
	rc.MaxRetries = cfg.LLMRetries
	rc.Retryable = assistant.RetryableOpenAI
	ai := assistant.New(assistant.NewOpenAI(assistant.OpenAIConfig{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}), rc)
	if !ai.Enabled() {
		slog.Info("assistant not configured (OPENAI_API_KEY not set)")
	}

	var avatars web.AvatarStore = web.LocalAvatars{Dir: cfg.ProfilePicDir}
	if cfg.CloudinaryURL != "" {
		cdn, err := cloudinary.FromURL(cfg.CloudinaryURL, "placement/profile_pics")
		if err != nil {
			return err
		}
		avatars = web.CloudAvatars{Client: cdn}
		slog.Info("profile pictures stored on Cloudinary")
	}

	srvDeps := web.Deps{
		Config:       cfg,
		DB:           db,
		Redis:        redisClient,
		Accounts:     accounts,
		Board:        portal.NewBoard(repo),
		Applications: portal.NewApplications(repo),
		Feedback:     portal.NewFeedback(repo),
		ChatLogs:     portal.NewChatLogs(repo),
		Reports:      portal.NewReports(repo),
		Resumes:      resumes,
		Intake:       resume.NewIntake(cfg.ResumeDir, resumes),
		Jobs:         jobs,
		Assistant:    ai,
		Avatars:      avatars,
		Limiter:      limiter,
	}
	server, err := web.NewServer(srvDeps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server forced shutdown", "err", err)
	}
	slog.Info("server exited")
	return nil
}
