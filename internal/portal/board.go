package portal

import (
	"context"
	"strings"
	"unicode/utf8"

	"placement/internal/apperr"
)

const liveSearchLimit = 20

// Board lists, searches and administers placements.
type Board struct {
	repo *Repository
}

func NewBoard(repo *Repository) *Board {
	return &Board{repo: repo}
}

// Search filters placements and marks the ones viewerID applied to. viewerID 0 means anonymous.
func (b *Board) Search(ctx context.Context, query, location string, viewerID int64) ([]Placement, error) {
	list, err := b.repo.SearchPlacements(ctx, strings.TrimSpace(query), strings.TrimSpace(location), 0)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "search placements", err)
	}
	if viewerID <= 0 || len(list) == 0 {
		return list, nil
	}
	applied, err := b.repo.AppliedPlacementIDs(ctx, viewerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "load applications", err)
	}
	for i := range list {
		list[i].Applied = applied[list[i].ID]
	}
	return list, nil
}

// LiveSearch returns JSON rows for the search-as-you-type box. Title is the placement role.
func (b *Board) LiveSearch(ctx context.Context, q string) ([]SearchResult, error) {
	list, err := b.repo.SearchPlacements(ctx, strings.TrimSpace(q), "", liveSearchLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "search placements", err)
	}
	out := make([]SearchResult, 0, len(list))
	for _, p := range list {
		out = append(out, SearchResult{
			ID:          p.ID,
			Title:       p.Role,
			Company:     p.Company,
			Location:    p.Location,
			Description: preview(p.Description, 120),
		})
	}
	return out, nil
}

// preview shortens a description for the search box, marking only real cuts.
func preview(s string, n int) string {
	if t := Truncate(s, n); t != s {
		return t + "..."
	}
	return s
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func (b *Board) Create(ctx context.Context, p Placement) (int64, error) {
	if err := validatePlacement(&p); err != nil {
		return 0, err
	}
	id, err := b.repo.CreatePlacement(ctx, p)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInternal, "create placement", err)
	}
	return id, nil
}

func (b *Board) Get(ctx context.Context, id int64) (Placement, error) {
	p, err := b.repo.PlacementByID(ctx, id)
	if err != nil {
		return Placement{}, apperr.Wrap(apperr.CodeInternal, "load placement", err)
	}
	if p == nil {
		return Placement{}, apperr.New(apperr.CodeNotFound, "Placement not found.")
	}
	return *p, nil
}

func (b *Board) Update(ctx context.Context, p Placement) error {
	if err := validatePlacement(&p); err != nil {
		return err
	}
	ok, err := b.repo.UpdatePlacement(ctx, p)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update placement", err)
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "Placement not found.")
	}
	return nil
}

// Delete removes a placement and, through the foreign key, its applications.
func (b *Board) Delete(ctx context.Context, id int64) error {
	ok, err := b.repo.DeletePlacement(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete placement", err)
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "Placement not found.")
	}
	return nil
}

func validatePlacement(p *Placement) error {
	p.Company = strings.TrimSpace(p.Company)
	p.Role = strings.TrimSpace(p.Role)
	p.Location = strings.TrimSpace(p.Location)
	p.Description = strings.TrimSpace(p.Description)
	p.Link = strings.TrimSpace(p.Link)
	p.Eligibility = strings.TrimSpace(p.Eligibility)
	p.Deadline = strings.TrimSpace(p.Deadline)
	if p.Company == "" || p.Role == "" || p.Location == "" {
		return apperr.New(apperr.CodeValidation, "Company, role and location are required.")
	}
	return nil
}
