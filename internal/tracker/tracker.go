// Package tracker is the application service shared by the CLI, the TUI and
// the HTTP API. Every call names the user it acts for.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/guidelines"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

// ErrNoUser is returned when an operation is attempted without a user reference.
var ErrNoUser = errors.New("no user selected, pass --user or set SUPPLEFLOW_USER")

type Service struct {
	store      storage.Provider
	guidelines *guidelines.Set
	summarizer *insight.Summarizer
	loc        *time.Location
	now        func() time.Time
	newID      func() string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithSummarizer(sum *insight.Summarizer) Option {
	return func(s *Service) { s.summarizer = sum }
}

// WithGuidelines replaces the default guideline set.
func WithGuidelines(set *guidelines.Set) Option {
	return func(s *Service) { s.guidelines = set }
}

// New builds a service over an initialised store. Days are cut at midnight in loc.
func New(store storage.Provider, loc *time.Location, opts ...Option) (*Service, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		store: store,
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guidelines == nil {
		set, err := guidelines.Load(guidelines.DefaultVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to load guidelines: %w", err)
		}
		s.guidelines = set
	}
	return s, nil
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Guidelines() *guidelines.Set { return s.guidelines }

func (s *Service) Store() storage.Provider { return s.store }

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) InsightEnabled() bool {
	return s.summarizer.Enabled()
}

func (s *Service) timestamp() time.Time {
	return models.NormalizeTime(s.now())
}

// ResolveUser finds a profile by ID, falling back to username.
func (s *Service) ResolveUser(ref string) (models.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Profile{}, ErrNoUser
	}
	p, err := s.store.GetProfile(ref)
	if err == nil || !storage.IsNotFound(err) {
		return p, err
	}
	return s.store.GetProfileByUsername(ref)
}

func (s *Service) Profiles() ([]models.Profile, error) {
	return s.store.GetAllProfiles()
}

func (s *Service) CreateProfile(username string) (models.Profile, error) {
	now := s.timestamp()
	p := models.Profile{
		ID:        s.newID(),
		Username:  strings.TrimSpace(username),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}
	if err := s.store.AddProfile(p); err != nil {
		return models.Profile{}, err
	}
	logger.Info("Created profile", "id", p.ID, "username", p.Username)
	return p, nil
}

func (s *Service) RenameProfile(id, username string) (models.Profile, error) {
	p, err := s.store.GetProfile(id)
	if err != nil {
		return models.Profile{}, err
	}
	p.Username = strings.TrimSpace(username)
	p.UpdatedAt = s.timestamp()
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}
	if err := s.store.UpdateProfile(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// DeleteProfile removes the profile with all of its supplements and intakes.
func (s *Service) DeleteProfile(id string) error {
	if err := s.store.DeleteProfile(id); err != nil {
		return err
	}
	logger.Info("Deleted profile", "id", id)
	return nil
}

func unitOrDefault(unit string) string {
	if unit = strings.TrimSpace(unit); unit == "" {
		return constants.DefaultUnit
	}
	return unit
}
