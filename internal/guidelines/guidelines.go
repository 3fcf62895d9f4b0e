// Package guidelines holds the versioned substance reference tables used for
// display and comparison. The tables are data, not code: built-in versions are
// embedded YAML documents and a user file can replace them entirely.
package guidelines

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtin embed.FS

const (
	DefaultVersion     = "v2"
	KratomKey          = "kratom"
	DefaultDoseDivisor = 7
)

var (
	ErrUnknownVersion   = errors.New("unknown guideline version")
	ErrUnknownSubstance = errors.New("unknown substance")
)

type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%g–%g", r.Min, r.Max)
}

type Row struct {
	Category string `yaml:"category" json:"category"`
	Value    string `yaml:"value" json:"value"`
}

type Substance struct {
	Name            string   `yaml:"name" json:"name"`
	Match           string   `yaml:"match" json:"match"`
	CapsuleMg       float64  `yaml:"capsule_mg" json:"capsule_mg"`
	DoseDivisor     float64  `yaml:"dose_divisor" json:"dose_divisor"`
	GramsPerDay     Range    `yaml:"grams_per_day" json:"grams_per_day"`
	CapsuleCeiling  float64  `yaml:"capsule_ceiling" json:"capsule_ceiling"`
	PerDoseCapsules Range    `yaml:"per_dose_capsules" json:"per_dose_capsules"`
	Rows            []Row    `yaml:"rows" json:"rows"`
	Warnings        []string `yaml:"warnings" json:"warnings"`
}

// Matches reports whether a supplement name refers to this substance.
func (s Substance) Matches(name string) bool {
	return s.Match != "" && strings.Contains(strings.ToLower(name), strings.ToLower(s.Match))
}

func (s Substance) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("substance name is required")
	}
	if s.CapsuleMg <= 0 {
		return fmt.Errorf("%s: capsule size must be greater than zero", s.Name)
	}
	if s.DoseDivisor <= 0 {
		return fmt.Errorf("%s: dose divisor must be greater than zero", s.Name)
	}
	if s.CapsuleCeiling <= 0 {
		return fmt.Errorf("%s: capsule ceiling must be greater than zero", s.Name)
	}
	if s.GramsPerDay.Min > s.GramsPerDay.Max {
		return fmt.Errorf("%s: grams per day range is inverted (%s)", s.Name, s.GramsPerDay)
	}
	if s.PerDoseCapsules.Min > s.PerDoseCapsules.Max {
		return fmt.Errorf("%s: per dose range is inverted (%s)", s.Name, s.PerDoseCapsules)
	}
	return nil
}

type Set struct {
	Version    string               `yaml:"version" json:"version"`
	Substances map[string]Substance `yaml:"substances" json:"substances"`
}

func (s *Set) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("guideline set has no version")
	}
	if len(s.Substances) == 0 {
		return fmt.Errorf("guideline set %s defines no substances", s.Version)
	}
	for key, sub := range s.Substances {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("substance %q: %w", key, err)
		}
	}
	return nil
}

// Lookup returns the substance stored under key.
func (s *Set) Lookup(key string) (Substance, error) {
	sub, ok := s.Substances[key]
	if !ok {
		return Substance{}, fmt.Errorf("%w: %s (guidelines %s)", ErrUnknownSubstance, key, s.Version)
	}
	return sub, nil
}

func (s *Set) Kratom() (Substance, error) {
	return s.Lookup(KratomKey)
}

// Parse decodes and validates a guideline document. Missing match strings
// default to the lowercased substance key and a missing dose divisor to 7.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse guidelines: %w", err)
	}
	for key, sub := range set.Substances {
		if sub.Match == "" {
			sub.Match = strings.ToLower(key)
		}
		if sub.DoseDivisor == 0 {
			sub.DoseDivisor = DefaultDoseDivisor
		}
		set.Substances[key] = sub
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid guidelines: %w", err)
	}
	return &set, nil
}

// Versions lists the embedded guideline versions in ascending order.
func Versions() []string {
	entries, err := fs.ReadDir(builtin, "data")
	if err != nil {
		return nil
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		versions = append(versions, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(versions)
	return versions
}

// Load returns an embedded guideline version. An empty version loads DefaultVersion.
func Load(version string) (*Set, error) {
	if version == "" {
		version = DefaultVersion
	}
	data, err := builtin.ReadFile(path.Join("data", version+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownVersion, version, strings.Join(Versions(), ", "))
	}
	return Parse(data)
}

// LoadFile reads a guideline document from disk.
func LoadFile(filename string) (*Set, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read guidelines file: %w", err)
	}
	return Parse(data)
}

// Resolve prefers a user file when one is configured, otherwise an embedded version.
func Resolve(filename, version string) (*Set, error) {
	if filename != "" {
		return LoadFile(filename)
	}
	return Load(version)
}
