// Package assistant answers placement questions through a hosted language model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"placement/internal/logger"
	"placement/internal/metrics"
)

const msgNotConfigured = "LLM not configured"

// Completer sends one redacted prompt to a model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result carries either an answer or an error message, never both.
type Result struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NotConfigured reports whether the result came from a missing credential.
func (r Result) NotConfigured() bool { return r.Error == msgNotConfigured }

type Assistant struct {
	completer Completer
	retry     RetryConfig
}

// New builds an assistant. A nil completer means no credential is configured.
func New(c Completer, rc RetryConfig) *Assistant {
	if oc, ok := c.(*OpenAICompleter); ok && oc == nil {
		c = nil
	}
	return &Assistant{completer: c, retry: rc}
}

func (a *Assistant) Enabled() bool { return a != nil && a.completer != nil }

// Ask redacts the question and queries the model with bounded retries.
func (a *Assistant) Ask(ctx context.Context, question string) Result {
	if !a.Enabled() {
		metrics.AssistantRequests.WithLabelValues("not_configured").Inc()
		return Result{Error: msgNotConfigured}
	}
	prompt := Redact(question)

	answer, err := RetryDo(ctx, a.retry, func(ctx context.Context) (string, error) {
		out, err := a.completer.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return "", errors.New("empty completion")
		}
		return out, nil
	})
	if err != nil {
		logger.From(ctx).Warn("assistant request failed", "err", err)
		metrics.AssistantRequests.WithLabelValues("failed").Inc()
		return Result{Error: fmt.Sprintf("LLM request failed after retries: %v", err)}
	}
	metrics.AssistantRequests.WithLabelValues("ok").Inc()
	return Result{Answer: answer}
}
