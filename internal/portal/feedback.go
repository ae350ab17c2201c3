package portal

import (
	"context"
	"math"
	"strings"

	"placement/internal/apperr"
)

type FeedbackService struct {
	repo *Repository
}

func NewFeedback(repo *Repository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (f *FeedbackService) Submit(ctx context.Context, userID int64, rating int, comment string) (int64, error) {
	if rating < 1 || rating > 5 {
		return 0, apperr.New(apperr.CodeValidation, "Invalid rating. Please select between 1 and 5 stars.")
	}
	comment = strings.TrimSpace(comment)
	id, err := f.repo.CreateFeedback(ctx, userID, rating, comment)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "save feedback", err)
	}
	return id, nil
}

// List returns feedback newest first.
func (f *FeedbackService) List(ctx context.Context) ([]Feedback, error) {
	list, err := f.repo.ListFeedback(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list feedback", err)
	}
	return list, nil
}

// ChatLogs stores the assistant conversation of logged-in users.
type ChatLogs struct {
	repo *Repository
}

func NewChatLogs(repo *Repository) *ChatLogs {
	return &ChatLogs{repo: repo}
}

func (c *ChatLogs) Record(ctx context.Context, userID int64, role, message string) error {
	if userID <= 0 || strings.TrimSpace(message) == "" {
		return nil
	}
	if err := c.repo.CreateChatLog(ctx, userID, role, message); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "save chat log", err)
	}
	return nil
}

func (c *ChatLogs) ListForUser(ctx context.Context, userID int64) ([]ChatLog, error) {
	logs, err := c.repo.ChatLogsByUser(ctx, userID, 200)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list chat logs", err)
	}
	return logs, nil
}

// Reports aggregates counts for the admin pages.
type Reports struct {
	repo *Repository
}

func NewReports(repo *Repository) *Reports {
	return &Reports{repo: repo}
}

func (r *Reports) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error
	if d.Students, err = r.repo.Count(ctx, "students"); err != nil {
		return d, apperr.Wrap(apperr.CodeInternal, "count students", err)
	}
	if d.Placements, err = r.repo.Count(ctx, "placements"); err != nil {
		return d, apperr.Wrap(apperr.CodeInternal, "count placements", err)
	}
	if d.Applications, err = r.repo.Count(ctx, "applications"); err != nil {
		return d, apperr.Wrap(apperr.CodeInternal, "count applications", err)
	}
	return d, nil
}

// Report adds the status breakdown and the share of students with a Selected application.
func (r *Reports) Report(ctx context.Context) (Report, error) {
	d, err := r.Dashboard(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Dashboard: d}
	if rep.ByStatus, err = r.repo.CountByStatus(ctx); err != nil {
		return Report{}, apperr.Wrap(apperr.CodeInternal, "count statuses", err)
	}
	if rep.Selected, err = r.repo.Count(ctx, "selected_students"); err != nil {
		return Report{}, apperr.Wrap(apperr.CodeInternal, "count selected", err)
	}
	if d.Students > 0 {
		rep.SuccessRate = math.Round(float64(rep.Selected)/float64(d.Students)*10000) / 100
	}
	return rep, nil
}
