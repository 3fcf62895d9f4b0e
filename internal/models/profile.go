package models

import (
	"fmt"
	"strings"
	"time"
)

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if strings.ContainsAny(p.Username, " \t\n") {
		return fmt.Errorf("%w: username must not contain whitespace", ErrInvalid)
	}
	return nil
}
