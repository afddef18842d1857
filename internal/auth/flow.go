// Package auth implements the login and register flows: local validation,
// one submission at a time, and session population on success.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"notesportal/internal/api"
	"notesportal/internal/routes"
	"notesportal/internal/session"
)

const minPasswordLength = 6

// ErrInFlight means a submission is already running; the attempt is a no-op,
// not a queued retry.
var ErrInFlight = errors.New("submission already in flight")

// ValidationError is a local form error. It is produced before any network
// call; input that fails validation never reaches the backend.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Authenticator is the slice of the backend client the flows need.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResult, error)
}

type Flow struct {
	backend  Authenticator
	sessions *session.Store
	adminKey string

	mu   sync.Mutex
	busy bool
}

func NewFlow(backend Authenticator, sessions *session.Store, adminKey string) *Flow {
	return &Flow{backend: backend, sessions: sessions, adminKey: adminKey}
}

func (f *Flow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// Login validates locally, submits once, and on success populates the
// session store and returns the role's landing destination.
func (f *Flow) Login(ctx context.Context, email, password string) (routes.Destination, error) {
	if !emailPattern.MatchString(email) {
		return "", ValidationError("Please enter a valid email")
	}
	if len(password) < minPasswordLength {
		return "", ValidationError("Password must be at least 6 characters")
	}

	if !f.begin() {
		return "", ErrInFlight
	}
	defer f.end()

	result, err := f.backend.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := f.sessions.Set(result.User, result.Token); err != nil {
		return "", err
	}
	return routes.Landing(result.User.Role), nil
}

type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	Department      string
	Semester        int
	AdminKey        string
}

func (f *Flow) validateRegister(form RegisterForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return ValidationError("Name is required")
	}
	if !emailPattern.MatchString(form.Email) {
		return ValidationError("Invalid email format")
	}
	if len(form.Password) < minPasswordLength {
		return ValidationError("Password must be at least 6 characters")
	}
	if form.Password != form.ConfirmPassword {
		return ValidationError("Passwords do not match")
	}
	if form.Department == "" {
		return ValidationError("Please select a department")
	}
	if form.Semester == 0 {
		return ValidationError("Please select a semester")
	}
	if form.Role == session.RoleAdmin {
		if form.AdminKey == "" {
			return ValidationError("Admin key is required for admin registration")
		}
		if form.AdminKey != f.adminKey {
			return ValidationError("Invalid admin key")
		}
	}
	return nil
}

// Register behaves like Login on success: the new identity is authenticated
// immediately. The admin key is checked locally and never sent.
func (f *Flow) Register(ctx context.Context, form RegisterForm) (routes.Destination, error) {
	if err := f.validateRegister(form); err != nil {
		return "", err
	}

	if !f.begin() {
		return "", ErrInFlight
	}
	defer f.end()

	result, err := f.backend.Register(ctx, api.RegisterRequest{
		Name:       form.Name,
		Email:      form.Email,
		Password:   form.Password,
		Role:       form.Role,
		Department: form.Department,
		Semester:   form.Semester,
	})
	if err != nil {
		return "", err
	}
	if err := f.sessions.Set(result.User, result.Token); err != nil {
		return "", err
	}
	return routes.Landing(result.User.Role), nil
}
