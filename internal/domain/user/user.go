package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Resource is the resource type name used for access checks and metrics.
const Resource = "user"

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Field length limits.
const (
	MaxUsernameLength = 64
	MaxNameLength     = 256
	MaxEmailLength    = 320
)

// User is the searchable user record (immutable value object).
type User struct {
	id        int64
	username  string
	name      string
	email     string
	createdAt time.Time
}

// New validates and creates a User. The ID is assigned by storage.
// Username: ^[a-zA-Z0-9_.-]+$, 1-64 chars. Name: non-empty. Email: contains '@'.
func New(username, name, email string, createdAt time.Time) (User, error) {
	if username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	if len(username) > MaxUsernameLength {
		return User{}, fmt.Errorf("username too long (max %d)", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return User{}, fmt.Errorf("username must be alphanumeric with dots, underscores and hyphens")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, fmt.Errorf("name is required")
	}
	if len(name) > MaxNameLength {
		return User{}, fmt.Errorf("name too long (max %d)", MaxNameLength)
	}
	if len(email) > MaxEmailLength {
		return User{}, fmt.Errorf("email too long (max %d)", MaxEmailLength)
	}
	if at := strings.IndexByte(email, '@'); at < 1 || at == len(email)-1 {
		return User{}, fmt.Errorf("email %q is invalid", email)
	}
	return User{username: username, name: name, email: email, createdAt: createdAt.UTC()}, nil
}

// Reconstruct creates a User without validation (storage hydration).
func Reconstruct(id int64, username, name, email string, createdAt time.Time) User {
	return User{id: id, username: username, name: name, email: email, createdAt: createdAt}
}

// ID returns the storage-assigned identifier.
func (u User) ID() int64 { return u.id }

// Username returns the login name.
func (u User) Username() string { return u.username }

// Name returns the full display name, "First Last".
func (u User) Name() string { return u.name }

// Email returns the email address.
func (u User) Email() string { return u.email }

// CreatedAt returns the creation time.
func (u User) CreatedAt() time.Time { return u.createdAt }

// WithID returns a copy carrying the given identifier.
func (u User) WithID(id int64) User {
	u.id = id
	return u
}
