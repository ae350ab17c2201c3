package portal

import (
	"context"

	"placement/internal/apperr"
	"placement/internal/logger"
	"placement/internal/metrics"
)

// Applications tracks student applications. One application per (student, placement) is
// enforced here rather than by the schema, so two concurrent submissions can both pass.
type Applications struct {
	repo *Repository
}

func NewApplications(repo *Repository) *Applications {
	return &Applications{repo: repo}
}

func (a *Applications) Apply(ctx context.Context, userID, placementID int64) (int64, error) {
	p, err := a.repo.PlacementByID(ctx, placementID)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "load placement", err)
	}
	if p == nil {
		return 0, apperr.New(apperr.CodeNotFound, "Placement not found.")
	}
	applied, err := a.repo.HasApplied(ctx, userID, placementID)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "check application", err)
	}
	if applied {
		return 0, apperr.New(apperr.CodeConflict, "You have already applied for this placement.")
	}
	id, err := a.repo.CreateApplication(ctx, userID, placementID)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "create application", err)
	}
	metrics.Applications.Inc()
	logger.From(ctx).Info("application submitted", "user_id", userID, "placement_id", placementID, "application_id", id)
	return id, nil
}

// UpdateStatus sets any enumerated status; transitions are not constrained.
func (a *Applications) UpdateStatus(ctx context.Context, appID int64, status string) (Application, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}
	ok, err := a.repo.UpdateApplicationStatus(ctx, appID, st)
	if err != nil {
		return Application{}, apperr.Wrap(apperr.CodeInternal, "update status", err)
	}
	if !ok {
		return Application{}, apperr.New(apperr.CodeNotFound, "Application not found.")
	}
	app, err := a.repo.ApplicationByID(ctx, appID)
	if err != nil || app == nil {
		return Application{}, apperr.Wrap(apperr.CodeInternal, "reload application", err)
	}
	return *app, nil
}

func (a *Applications) ListForPlacement(ctx context.Context, placementID int64) ([]Application, error) {
	return wrapList(a.repo.ApplicationsByPlacement(ctx, placementID))
}

func (a *Applications) ListForStudent(ctx context.Context, userID int64) ([]Application, error) {
	return wrapList(a.repo.ApplicationsByUser(ctx, userID))
}

func (a *Applications) ListAll(ctx context.Context) ([]Application, error) {
	return wrapList(a.repo.AllApplications(ctx))
}

func wrapList(apps []Application, err error) ([]Application, error) {
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list applications", err)
	}
	return apps, nil
}
