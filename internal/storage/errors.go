package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique value (a username) is already taken.
	ErrDuplicate = errors.New("already exists")
)

const (
	KindProfile    = "profile"
	KindSupplement = "supplement"
	KindIntake     = "intake"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is, or wraps, a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DuplicateUsername reports a username collision.
func DuplicateUsername(username string) error {
	return fmt.Errorf("profile %q: %w", username, ErrDuplicate)
}
