package guidelines

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVersions(t *testing.T) {
	if diff := cmp.Diff([]string{"v1", "v2"}, Versions()); diff != "" {
		t.Errorf("Versions() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_BuiltinVersions(t *testing.T) {
	tests := []struct {
		version     string
		wantCeiling float64
		wantPerDose Range
	}{
		{version: "v1", wantCeiling: 17, wantPerDose: Range{Min: 5, Max: 6}},
		{version: "v2", wantCeiling: 23, wantPerDose: Range{Min: 5, Max: 8}},
		{version: "", wantCeiling: 23, wantPerDose: Range{Min: 5, Max: 8}},
	}

	for _, tt := range tests {
		t.Run("version "+tt.version, func(t *testing.T) {
			set, err := Load(tt.version)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			k, err := set.Kratom()
			if err != nil {
				t.Fatalf("Kratom() error = %v", err)
			}
			if k.CapsuleMg != 700 {
				t.Errorf("CapsuleMg = %v, want 700", k.CapsuleMg)
			}
			if k.CapsuleCeiling != tt.wantCeiling {
				t.Errorf("CapsuleCeiling = %v, want %v", k.CapsuleCeiling, tt.wantCeiling)
			}
			if k.PerDoseCapsules != tt.wantPerDose {
				t.Errorf("PerDoseCapsules = %v, want %v", k.PerDoseCapsules, tt.wantPerDose)
			}
			if k.GramsPerDay != (Range{Min: 12, Max: 16}) {
				t.Errorf("GramsPerDay = %v", k.GramsPerDay)
			}
			if len(k.Rows) != 4 || len(k.Warnings) == 0 {
				t.Errorf("expected 4 rows and some warnings, got %d rows, %d warnings", len(k.Rows), len(k.Warnings))
			}
		})
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	_, err := Load("v99")
	if !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Load(v99) error = %v, want ErrUnknownVersion", err)
	}
}

func TestParse_Defaults(t *testing.T) {
	doc := []byte(`
version: custom
substances:
  kratom:
    name: Kratom
    capsule_mg: 500
    grams_per_day: {min: 10, max: 14}
    capsule_ceiling: 20
    per_dose_capsules: {min: 4, max: 6}
`)
	set, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	k, _ := set.Kratom()
	if k.Match != "kratom" {
		t.Errorf("Match = %q, want kratom", k.Match)
	}
	if k.DoseDivisor != DefaultDoseDivisor {
		t.Errorf("DoseDivisor = %v, want %v", k.DoseDivisor, DefaultDoseDivisor)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "version: [unclosed"},
		{"no version", "substances:\n  kratom:\n    name: K\n    capsule_mg: 700\n    capsule_ceiling: 17\n"},
		{"no substances", "version: x\n"},
		{"zero capsule", "version: x\nsubstances:\n  kratom:\n    name: K\n    capsule_mg: 0\n    capsule_ceiling: 17\n"},
		{"zero ceiling", "version: x\nsubstances:\n  kratom:\n    name: K\n    capsule_mg: 700\n"},
		{"inverted range", "version: x\nsubstances:\n  kratom:\n    name: K\n    capsule_mg: 700\n    capsule_ceiling: 17\n    grams_per_day: {min: 16, max: 12}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestResolve_FileOverridesVersion(t *testing.T) {
	file := filepath.Join(t.TempDir(), "guidelines.yaml")
	doc := "version: house\nsubstances:\n  kratom:\n    name: Kratom\n    capsule_mg: 650\n    capsule_ceiling: 20\n"
	if err := os.WriteFile(file, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	set, err := Resolve(file, "v1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if set.Version != "house" {
		t.Errorf("Version = %q, want house", set.Version)
	}

	set, err = Resolve("", "v1")
	if err != nil || set.Version != "v1" {
		t.Errorf("Resolve() without file = %v, %v", set, err)
	}
}

func TestSubstance_Matches(t *testing.T) {
	s := Substance{Match: "kratom"}
	for name, want := range map[string]bool{
		"Kratom":          true,
		"Red Bali KRATOM": true,
		"Magnesium":       false,
		"":                false,
	} {
		if got := s.Matches(name); got != want {
			t.Errorf("Matches(%q) = %v, want %v", name, got, want)
		}
	}
	if (Substance{}).Matches("kratom") {
		t.Error("empty match string should never match")
	}
}

func TestSet_LookupUnknown(t *testing.T) {
	set, _ := Load("v1")
	if _, err := set.Lookup("caffeine"); !errors.Is(err, ErrUnknownSubstance) {
		t.Errorf("Lookup() error = %v, want ErrUnknownSubstance", err)
	}
}
