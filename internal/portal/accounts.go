package portal

import (
	"context"
	"net/mail"
	"strings"

	"placement/internal/apperr"
	"placement/internal/auth"
	"placement/internal/logger"
	"placement/internal/store"
)

const msgDuplicateUser = "Username or email already exists."

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// ProfileUpdate carries editable profile fields. Nil file fields keep the stored value.
type ProfileUpdate struct {
	Username   string
	Email      string
	Phone      string
	Skills     string
	ProfilePic *string
	Resume     *string
}

// Accounts registers, authenticates and administers users.
type Accounts struct {
	repo *Repository
}

func NewAccounts(repo *Repository) *Accounts {
	return &Accounts{repo: repo}
}

// Register creates a user. Duplicate username or email is a conflict and inserts nothing.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return User{}, apperr.New(apperr.CodeValidation, "All fields are required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return User{}, apperr.New(apperr.CodeValidation, "Please enter a valid email address.")
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return User{}, err
	}

	exists, err := a.repo.UserExists(ctx, in.Username, in.Email, 0)
	if err != nil {
		return User{}, apperr.Wrap(apperr.CodeInternal, "check user", err)
	}
	if exists {
		return User{}, apperr.New(apperr.CodeConflict, msgDuplicateUser)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, apperr.Wrap(apperr.CodeInternal, "hash password", err)
	}
	u := User{Username: in.Username, Email: in.Email, PasswordHash: hash, Role: role}
	id, err := a.repo.CreateUser(ctx, u)
	if err != nil {
		// a concurrent registration can slip past the pre-check
		if store.IsUniqueViolation(err) {
			return User{}, apperr.New(apperr.CodeConflict, msgDuplicateUser)
		}
		return User{}, apperr.Wrap(apperr.CodeInternal, "create user", err)
	}
	u.ID = id
	logger.From(ctx).Info("user registered", "user_id", id, "role", role)
	return u, nil
}

// EnsureAdmin creates the bootstrap admin unless the username or email is already taken.
func (a *Accounts) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	exists, err := a.repo.UserExists(ctx, strings.TrimSpace(username), strings.TrimSpace(email), 0)
	if err != nil {
		return false, apperr.Wrap(apperr.CodeInternal, "check user", err)
	}
	if exists {
		return false, nil
	}
	if _, err := a.Register(ctx, RegisterInput{Username: username, Email: email, Password: password, Role: string(auth.RoleAdmin)}); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate matches login against email or username.
func (a *Accounts) Authenticate(ctx context.Context, login, password string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return User{}, apperr.New(apperr.CodeValidation, "Email and password are required.")
	}
	u, err := a.repo.UserByLogin(ctx, login)
	if err != nil {
		return User{}, apperr.Wrap(apperr.CodeInternal, "load user", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, apperr.New(apperr.CodeUnauthorized, "Invalid credentials!")
	}
	return *u, nil
}

func (a *Accounts) Profile(ctx context.Context, userID int64) (User, error) {
	return a.GetUser(ctx, userID)
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID int64, p ProfileUpdate) (User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Skills = strings.TrimSpace(p.Skills)
	if err := a.checkIdentity(ctx, userID, p.Username, p.Email); err != nil {
		return User{}, err
	}
	if err := a.repo.UpdateProfile(ctx, userID, p); err != nil {
		if store.IsUniqueViolation(err) {
			return User{}, apperr.New(apperr.CodeConflict, msgDuplicateUser)
		}
		return User{}, apperr.Wrap(apperr.CodeInternal, "update profile", err)
	}
	return a.GetUser(ctx, userID)
}

func (a *Accounts) checkIdentity(ctx context.Context, userID int64, username, email string) error {
	if username == "" || email == "" {
		return apperr.New(apperr.CodeValidation, "Username and email are required.")
	}
	taken, err := a.repo.UserExists(ctx, username, email, userID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "check user", err)
	}
	if taken {
		return apperr.New(apperr.CodeConflict, msgDuplicateUser)
	}
	return nil
}

func (a *Accounts) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := a.repo.UserByID(ctx, id)
	if err != nil {
		return User{}, apperr.Wrap(apperr.CodeInternal, "load user", err)
	}
	if u == nil {
		return User{}, apperr.New(apperr.CodeNotFound, "User not found.")
	}
	return *u, nil
}

func (a *Accounts) ListStudents(ctx context.Context) ([]User, error) {
	users, err := a.repo.ListUsersByRole(ctx, auth.RoleStudent)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "list students", err)
	}
	return users, nil
}

func (a *Accounts) UpdateStudent(ctx context.Context, id int64, username, email string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := a.checkIdentity(ctx, id, username, email); err != nil {
		return err
	}
	ok, err := a.repo.UpdateUserIdentity(ctx, id, username, email)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "update student", err)
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "User not found.")
	}
	return nil
}

// DeleteStudent removes the user; applications cascade.
func (a *Accounts) DeleteStudent(ctx context.Context, id int64) error {
	ok, err := a.repo.DeleteUser(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "delete student", err)
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "User not found.")
	}
	logger.From(ctx).Info("student deleted", "user_id", id)
	return nil
}
