// Package portal holds the placement portal's domain types, its SQL repository and the
// services the web layer calls.
package portal

import (
	"time"

	"placement/internal/apperr"
	"placement/internal/auth"
)

// User is an account row. PasswordHash is never rendered.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	Phone        string
	Skills       string
	ProfilePic   string
	Resume       string
	CreatedAt    time.Time
}

// Placement is a job listing. Applied is set per viewer by the board.
type Placement struct {
	ID          int64
	Company     string
	Role        string
	Location    string
	Description string
	Link        string
	Eligibility string
	Deadline    string
	CreatedAt   time.Time
	Applied     bool
}

type Status string

const (
	StatusApplied     Status = "Applied"
	StatusShortlisted Status = "Shortlisted"
	StatusSelected    Status = "Selected"
	StatusRejected    Status = "Rejected"
)

// Statuses lists every application status in display order.
var Statuses = []Status{StatusApplied, StatusShortlisted, StatusSelected, StatusRejected}

// ParseStatus accepts only the enumerated values.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", apperr.New(apperr.CodeValidation, "Invalid status.")
}

// Application joins an application with its student and placement.
type Application struct {
	ID          int64
	UserID      int64
	PlacementID int64
	Status      Status
	AppliedAt   time.Time

	Username string
	Email    string
	Company  string
	Role     string
	Location string
}

type Feedback struct {
	ID        int64
	UserID    int64
	Username  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type ChatLog struct {
	ID        int64
	UserID    int64
	Role      string
	Message   string
	CreatedAt time.Time
}

// ResumeRecord is a stored upload together with its review.
type ResumeRecord struct {
	ID          int64
	UserID      int64
	Filename    string
	StoragePath string
	Verdict     string
	Details     string
	UploadedAt  time.Time
}

// SearchResult is the live-search row returned as JSON.
type SearchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type Dashboard struct {
	Students     int
	Placements   int
	Applications int
}

type Report struct {
	Dashboard
	ByStatus    map[Status]int
	Selected    int
	SuccessRate float64
}
