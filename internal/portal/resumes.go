package portal

import (
	"context"

	"placement/internal/apperr"
)

// Resumes stores review results and lists them for admins.
type Resumes struct {
	repo *Repository
}

func NewResumes(repo *Repository) *Resumes {
	return &Resumes{repo: repo}
}

func (r *Resumes) Save(ctx context.Context, rec ResumeRecord) (int64, error) {
	id, err := r.repo.CreateResume(ctx, rec)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "save resume", err)
	}
	return id, nil
}

func (r *Resumes) ListForStudent(ctx context.Context, userID int64) ([]ResumeRecord, error) {
	list, err := r.repo.ResumesByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list resumes", err)
	}
	return list, nil
}
