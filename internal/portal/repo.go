package portal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"placement/internal/auth"
)

// Repository persists portal data. Queries use $N placeholders in ascending order so the
// same text runs on SQLite and Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func now() time.Time { return time.Now().UTC() }

type scanner interface {
	Scan(dest ...any) error
}

// --- users

const userColumns = `id, username, email, password, role, COALESCE(phone,''), COALESCE(skills,''),
	COALESCE(profile_pic,''), COALESCE(resume,''), created_at`

func scanUser(s scanner) (User, error) {
	var u User
	var role string
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Phone, &u.Skills,
		&u.ProfilePic, &u.Resume, &u.CreatedAt)
	u.Role = auth.Role(role)
	return u, err
}

// CreateUser inserts a user and returns its id.
func (r *Repository) CreateUser(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, string(u.Role), now()).Scan(&id)
	return id, err
}

// UserExists reports whether the username or the email is taken by another user.
func (r *Repository) UserExists(ctx context.Context, username, email string, exceptID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE (username = $1 OR email = $2) AND id <> $3
	`, username, email, exceptID).Scan(&n)
	return n > 0, err
}

// UserByLogin matches the login against email or username. Missing users return nil.
func (r *Repository) UserByLogin(ctx context.Context, login string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $2 LIMIT 1`, login, login)
	return optionalUser(row)
}

func (r *Repository) UserByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return optionalUser(row)
}

func optionalUser(row *sql.Row) (*User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfile writes profile fields. Nil file fields keep the stored value.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, phone = $3, skills = $4,
		    profile_pic = COALESCE($5, profile_pic), resume = COALESCE($6, resume)
		WHERE id = $7
	`, p.Username, p.Email, p.Phone, p.Skills, p.ProfilePic, p.Resume, id)
	return err
}

func (r *Repository) UpdateUserIdentity(ctx context.Context, id int64, username, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET username = $1, email = $2 WHERE id = $3`, username, email, id)
	return affected(res, err)
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affected(res, err)
}

func (r *Repository) ListUsersByRole(ctx context.Context, role auth.Role) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY username`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- placements

const placementColumns = `id, company, role, location, COALESCE(description,''), COALESCE(link,''),
	COALESCE(eligibility,''), COALESCE(deadline,''), created_at`

func scanPlacement(s scanner) (Placement, error) {
	var p Placement
	err := s.Scan(&p.ID, &p.Company, &p.Role, &p.Location, &p.Description, &p.Link,
		&p.Eligibility, &p.Deadline, &p.CreatedAt)
	return p, err
}

func (r *Repository) CreatePlacement(ctx context.Context, p Placement) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO placements (company, role, location, description, link, eligibility, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Company, p.Role, p.Location, p.Description, p.Link, p.Eligibility, p.Deadline, now()).Scan(&id)
	return id, err
}

func (r *Repository) PlacementByID(ctx context.Context, id int64) (*Placement, error) {
	p, err := scanPlacement(r.db.QueryRowContext(ctx, `SELECT `+placementColumns+` FROM placements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) UpdatePlacement(ctx context.Context, p Placement) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE placements
		SET company = $1, role = $2, location = $3, description = $4, link = $5, eligibility = $6, deadline = $7
		WHERE id = $8
	`, p.Company, p.Role, p.Location, p.Description, p.Link, p.Eligibility, p.Deadline, p.ID)
	return affected(res, err)
}

func (r *Repository) DeletePlacement(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM placements WHERE id = $1`, id)
	return affected(res, err)
}

// SearchPlacements matches query against company, role and description, and location
// against location. Empty filters match everything.
func (r *Repository) SearchPlacements(ctx context.Context, query, location string, limit int) ([]Placement, error) {
	if limit <= 0 {
		limit = 1000
	}
	q := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+placementColumns+`
		FROM placements
		WHERE (LOWER(company) LIKE LOWER($1) OR LOWER(role) LIKE LOWER($2) OR LOWER(COALESCE(description,'')) LIKE LOWER($3))
		  AND LOWER(location) LIKE LOWER($4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`, q, q, q, "%"+location+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- applications

// HasApplied reports whether the user already applied to the placement.
func (r *Repository) HasApplied(ctx context.Context, userID, placementID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications WHERE user_id = $1 AND placement_id = $2
	`, userID, placementID).Scan(&n)
	return n > 0, err
}

// AppliedPlacementIDs returns the set of placements the user applied to.
func (r *Repository) AppliedPlacementIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT placement_id FROM applications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *Repository) CreateApplication(ctx context.Context, userID, placementID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO applications (user_id, placement_id, status, applied_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, placementID, string(StatusApplied), now()).Scan(&id)
	return id, err
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id int64, status Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, string(status), id)
	return affected(res, err)
}

func (r *Repository) ApplicationByID(ctx context.Context, id int64) (*Application, error) {
	apps, err := r.listApplications(ctx, `WHERE a.id = $1`, id)
	if err != nil || len(apps) == 0 {
		return nil, err
	}
	return &apps[0], nil
}

// ApplicationsByPlacement, ApplicationsByUser and AllApplications return joined rows, newest first.
func (r *Repository) ApplicationsByPlacement(ctx context.Context, placementID int64) ([]Application, error) {
	return r.listApplications(ctx, `WHERE a.placement_id = $1`, placementID)
}

func (r *Repository) ApplicationsByUser(ctx context.Context, userID int64) ([]Application, error) {
	return r.listApplications(ctx, `WHERE a.user_id = $1`, userID)
}

func (r *Repository) AllApplications(ctx context.Context) ([]Application, error) {
	return r.listApplications(ctx, ``)
}

func (r *Repository) listApplications(ctx context.Context, where string, args ...any) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.placement_id, a.status, a.applied_at,
		       u.username, u.email, p.company, p.role, p.location
		FROM applications a
		JOIN users u ON u.id = a.user_id
		JOIN placements p ON p.id = a.placement_id
		`+where+`
		ORDER BY a.applied_at DESC, a.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Application
	for rows.Next() {
		var a Application
		var status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.PlacementID, &status, &a.AppliedAt,
			&a.Username, &a.Email, &a.Company, &a.Role, &a.Location); err != nil {
			return nil, err
		}
		a.Status = Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- feedback

func (r *Repository) CreateFeedback(ctx context.Context, userID int64, rating int, comment string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feedback (user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, nullID(userID), rating, comment, now()).Scan(&id)
	return id, err
}

func (r *Repository) ListFeedback(ctx context.Context) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, COALESCE(u.username, 'Anonymous'), f.rating, f.comment, f.created_at
		FROM feedback f
		LEFT JOIN users u ON u.id = f.user_id
		ORDER BY f.created_at DESC, f.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Feedback
	for rows.Next() {
		var f Feedback
		var uid sql.NullInt64
		if err := rows.Scan(&f.ID, &uid, &f.Username, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.UserID = uid.Int64
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- chat logs

func (r *Repository) CreateChatLog(ctx context.Context, userID int64, role, message string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_logs (user_id, role, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, nullID(userID), role, message, now())
	return err
}

func (r *Repository) ChatLogsByUser(ctx context.Context, userID int64, limit int) ([]ChatLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, message, created_at
		FROM chat_logs WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChatLog
	for rows.Next() {
		var l ChatLog
		var uid sql.NullInt64
		if err := rows.Scan(&l.ID, &uid, &l.Role, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.UserID = uid.Int64
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- resumes

func (r *Repository) CreateResume(ctx context.Context, rec ResumeRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO resumes (user_id, filename, storage_path, verdict, details, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, nullID(rec.UserID), rec.Filename, rec.StoragePath, rec.Verdict, rec.Details, now()).Scan(&id)
	return id, err
}

func (r *Repository) ResumesByUser(ctx context.Context, userID int64) ([]ResumeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, filename, storage_path, verdict, details, uploaded_at
		FROM resumes WHERE user_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResumeRecord
	for rows.Next() {
		var rec ResumeRecord
		var uid sql.NullInt64
		if err := rows.Scan(&rec.ID, &uid, &rec.Filename, &rec.StoragePath, &rec.Verdict, &rec.Details, &rec.UploadedAt); err != nil {
			return nil, err
		}
		rec.UserID = uid.Int64
		out = append(out, rec)
	}
	return out, rows.Err()
}

// --- reports

func (r *Repository) Count(ctx context.Context, table string) (int, error) {
	var q string
	switch table {
	case "students":
		q = `SELECT COUNT(*) FROM users WHERE role = 'student'`
	case "placements":
		q = `SELECT COUNT(*) FROM placements`
	case "applications":
		q = `SELECT COUNT(*) FROM applications`
	case "selected_students":
		q = `SELECT COUNT(DISTINCT user_id) FROM applications WHERE status = 'Selected'`
	default:
		return 0, errors.New("unknown count " + table)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[Status(s)] = n
	}
	return out, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
