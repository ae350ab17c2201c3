package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "HTTP_PORT", "DATABASE", "UPLOAD_DIR", "RESUME_UPLOAD_FOLDER", "MAX_UPLOAD_BYTES", "LLM_RETRIES", "HTTP_WRITE_TIMEOUT", "ALLOW_ADMIN_SIGNUP"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "5000" {
		t.Errorf("HTTPPort = %q, want 5000", cfg.HTTPPort)
	}
	if cfg.Database != "placement.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.ResumeDir != filepath.Join("uploads", "resumes") {
		t.Errorf("ResumeDir = %q", cfg.ResumeDir)
	}
	if cfg.MaxUploadBytes != 5*1024*1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMRetries != 2 {
		t.Errorf("LLMRetries = %d", cfg.LLMRetries)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %s", cfg.WriteTimeout)
	}
	if cfg.AllowAdminSignup {
		t.Error("admin signup must be off by default")
	}
	if cfg.Production() {
		t.Error("dev config reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPLOAD_DIR", "/srv/files")
	t.Setenv("RESUME_UPLOAD_FOLDER", "")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LLM_RETRIES", "5")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")

	cfg := Load()
	if !cfg.Production() {
		t.Error("expected production")
	}
	if cfg.ResumeDir != filepath.Join("/srv/files", "resumes") {
		t.Errorf("ResumeDir = %q", cfg.ResumeDir)
	}
	if cfg.ProfilePicDir != filepath.Join("/srv/files", "profile_pics") {
		t.Errorf("ProfilePicDir = %q", cfg.ProfilePicDir)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.LLMRetries != 5 {
		t.Errorf("LLMRetries = %d", cfg.LLMRetries)
	}
	if !cfg.AllowAdminSignup {
		t.Error("expected admin signup enabled")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("JOB_RESULTS", "many")

	cfg := Load()
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.JobResults != 5 {
		t.Errorf("JobResults = %d", cfg.JobResults)
	}
}
