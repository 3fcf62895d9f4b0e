// Package storagetest holds the behaviour every storage.Provider must share.
// Adapter packages run it against a freshly initialised store.
package storagetest

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

// Base is the reference time fixtures are built around.
var Base = time.Date(2026, 3, 1, 9, 0, 0, 123456000, time.UTC)

func Profile(id, username string, offset time.Duration) models.Profile {
	at := Base.Add(offset)
	return models.Profile{ID: id, Username: username, CreatedAt: at, UpdatedAt: at}
}

func Supplement(id, userID, name string, maxDosage float64, offset time.Duration) models.Supplement {
	at := Base.Add(offset)
	return models.Supplement{
		ID: id, UserID: userID, Name: name, Unit: "mg",
		MaxDosage: maxDosage, CreatedAt: at, UpdatedAt: at,
	}
}

func Intake(id, userID, supplementID string, dosage float64, takenAt time.Time) models.Intake {
	return models.Intake{
		ID: id, UserID: userID, SupplementID: supplementID,
		Dosage: dosage, TakenAt: takenAt, CreatedAt: takenAt,
	}
}

// Run exercises p through every Provider operation. open must return an
// initialised, empty store.
func Run(t *testing.T, open func(t *testing.T) storage.Provider) {
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, open(t)) })
	t.Run("Supplements", func(t *testing.T) { testSupplements(t, open(t)) })
	t.Run("Intakes", func(t *testing.T) { testIntakes(t, open(t)) })
	t.Run("DeleteSupplementCascades", func(t *testing.T) { testDeleteSupplement(t, open(t)) })
	t.Run("DeleteProfileCascades", func(t *testing.T) { testDeleteProfile(t, open(t)) })
	t.Run("UserIsolation", func(t *testing.T) { testIsolation(t, open(t)) })
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, open(t)) })
}

func mustNotFound(t *testing.T, err error, kind string) {
	t.Helper()
	var nf *storage.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != kind {
		t.Fatalf("expected %s not-found error, got %v", kind, err)
	}
	if !storage.IsNotFound(err) {
		t.Fatalf("error %v does not match storage.ErrNotFound", err)
	}
}

func testProfiles(t *testing.T, p storage.Provider) {
	alice := Profile("u1", "alice", 0)
	bob := Profile("u2", "bob", time.Minute)
	for _, prof := range []models.Profile{bob, alice} {
		if err := p.AddProfile(prof); err != nil {
			t.Fatalf("AddProfile(%s): %v", prof.Username, err)
		}
	}

	all, err := p.GetAllProfiles()
	if err != nil {
		t.Fatalf("GetAllProfiles: %v", err)
	}
	if diff := cmp.Diff([]models.Profile{alice, bob}, all); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}

	got, err := p.GetProfileByUsername("bob")
	if err != nil || got.ID != "u2" {
		t.Errorf("GetProfileByUsername(bob) = %+v, %v", got, err)
	}

	if err := p.AddProfile(Profile("u3", "alice", 2*time.Minute)); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate username: got %v, want ErrDuplicate", err)
	}

	bob.Username = "robert"
	bob.UpdatedAt = Base.Add(time.Hour)
	if err := p.UpdateProfile(bob); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got, _ := p.GetProfile("u2"); got.Username != "robert" || !got.UpdatedAt.Equal(bob.UpdatedAt) {
		t.Errorf("profile not updated: %+v", got)
	}

	bob.Username = "alice"
	if err := p.UpdateProfile(bob); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("rename onto taken username: got %v, want ErrDuplicate", err)
	}

	_, err = p.GetProfile("missing")
	mustNotFound(t, err, storage.KindProfile)
	mustNotFound(t, p.UpdateProfile(Profile("missing", "ghost", 0)), storage.KindProfile)
	mustNotFound(t, p.DeleteProfile("missing"), storage.KindProfile)
}

func testSupplements(t *testing.T, p storage.Provider) {
	capsule := 700.0
	older := Supplement("s1", "u1", "Magnesium", 2, 0)
	newer := Supplement("s2", "u1", "Kratom", 23, time.Hour)
	newer.CapsuleMg = &capsule
	newer.Description = "capsules"
	for _, s := range []models.Supplement{older, newer} {
		if err := p.AddSupplement(s); err != nil {
			t.Fatalf("AddSupplement(%s): %v", s.Name, err)
		}
	}

	all, err := p.GetAllSupplements("u1")
	if err != nil {
		t.Fatalf("GetAllSupplements: %v", err)
	}
	if diff := cmp.Diff([]models.Supplement{newer, older}, all); diff != "" {
		t.Errorf("supplements mismatch (-want +got):\n%s", diff)
	}

	older.MaxDosage = 3
	older.RecommendedDosage = 1
	older.UpdatedAt = Base.Add(2 * time.Hour)
	if err := p.UpdateSupplement(older); err != nil {
		t.Fatalf("UpdateSupplement: %v", err)
	}
	got, err := p.GetSupplement("u1", "s1")
	if err != nil {
		t.Fatalf("GetSupplement: %v", err)
	}
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("updated supplement mismatch (-want +got):\n%s", diff)
	}

	_, err = p.GetSupplement("u1", "missing")
	mustNotFound(t, err, storage.KindSupplement)
	mustNotFound(t, p.UpdateSupplement(Supplement("missing", "u1", "x", 1, 0)), storage.KindSupplement)

	empty, err := p.GetAllSupplements("nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("GetAllSupplements(nobody) = %v, %v; want empty non-nil slice", empty, err)
	}
}

func testIntakes(t *testing.T, p storage.Provider) {
	if err := p.AddSupplement(Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSupplement(Supplement("s2", "u1", "Zinc", 1, 0)); err != nil {
		t.Fatal(err)
	}

	morning := Intake("i1", "u1", "s1", 1, Base)
	morning.Notes = "with breakfast"
	evening := Intake("i2", "u1", "s1", 2, Base.Add(13*time.Hour))
	nextDay := Intake("i3", "u1", "s2", 0.5, Base.Add(26*time.Hour))
	for _, in := range []models.Intake{morning, nextDay, evening} {
		if err := p.AddIntake(in); err != nil {
			t.Fatalf("AddIntake(%s): %v", in.ID, err)
		}
	}

	all, err := p.GetIntakes("u1", models.IntakeFilter{})
	if err != nil {
		t.Fatalf("GetIntakes: %v", err)
	}
	if diff := cmp.Diff([]models.Intake{nextDay, evening, morning}, all); diff != "" {
		t.Errorf("intakes mismatch (-want +got):\n%s", diff)
	}

	start := Base
	end := Base.Add(13 * time.Hour)
	inDay, err := p.GetIntakes("u1", models.IntakeFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("GetIntakes(window): %v", err)
	}
	if diff := cmp.Diff([]models.Intake{evening, morning}, inDay); diff != "" {
		t.Errorf("bounds are inclusive (-want +got):\n%s", diff)
	}

	zinc, err := p.GetIntakes("u1", models.IntakeFilter{SupplementID: "s2"})
	if err != nil || len(zinc) != 1 || zinc[0].ID != "i3" {
		t.Errorf("GetIntakes(s2) = %v, %v", zinc, err)
	}

	replaced := morning
	replaced.Dosage = 1.5
	replaced.TakenAt = Base.Add(30 * time.Minute)
	replaced.Notes = ""
	replaced.CreatedAt = Base.Add(99 * time.Hour)
	if err := p.ReplaceIntake(replaced); err != nil {
		t.Fatalf("ReplaceIntake: %v", err)
	}
	got, err := p.GetIntake("u1", "i1")
	if err != nil {
		t.Fatalf("GetIntake: %v", err)
	}
	replaced.CreatedAt = morning.CreatedAt
	if diff := cmp.Diff(replaced, got); diff != "" {
		t.Errorf("replaced intake mismatch (-want +got):\n%s", diff)
	}

	if err := p.DeleteIntake("u1", "i2"); err != nil {
		t.Fatalf("DeleteIntake: %v", err)
	}
	mustNotFound(t, p.DeleteIntake("u1", "i2"), storage.KindIntake)
	mustNotFound(t, p.ReplaceIntake(Intake("missing", "u1", "s1", 1, Base)), storage.KindIntake)
	_, err = p.GetIntake("u1", "i2")
	mustNotFound(t, err, storage.KindIntake)
}

func testDeleteSupplement(t *testing.T, p storage.Provider) {
	for _, s := range []models.Supplement{
		Supplement("s1", "u1", "Magnesium", 2, 0),
		Supplement("s2", "u1", "Zinc", 1, 0),
	} {
		if err := p.AddSupplement(s); err != nil {
			t.Fatal(err)
		}
	}
	for _, in := range []models.Intake{
		Intake("i1", "u1", "s1", 1, Base),
		Intake("i2", "u1", "s1", 1, Base.Add(time.Hour)),
		Intake("i3", "u1", "s2", 1, Base),
	} {
		if err := p.AddIntake(in); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.DeleteSupplement("u1", "s1"); err != nil {
		t.Fatalf("DeleteSupplement: %v", err)
	}
	mustNotFound(t, p.DeleteSupplement("u1", "s1"), storage.KindSupplement)

	supplements, _ := p.GetAllSupplements("u1")
	if len(supplements) != 1 || supplements[0].ID != "s2" {
		t.Errorf("remaining supplements = %v", supplements)
	}
	intakes, _ := p.GetIntakes("u1", models.IntakeFilter{})
	if len(intakes) != 1 || intakes[0].ID != "i3" {
		t.Errorf("remaining intakes = %v", intakes)
	}
}

func testDeleteProfile(t *testing.T, p storage.Provider) {
	if err := p.AddProfile(Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSupplement(Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddIntake(Intake("i1", "u1", "s1", 1, Base)); err != nil {
		t.Fatal(err)
	}

	if err := p.DeleteProfile("u1"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if s, _ := p.GetAllSupplements("u1"); len(s) != 0 {
		t.Errorf("supplements survived profile deletion: %v", s)
	}
	if in, _ := p.GetIntakes("u1", models.IntakeFilter{}); len(in) != 0 {
		t.Errorf("intakes survived profile deletion: %v", in)
	}
}

func testIsolation(t *testing.T, p storage.Provider) {
	if err := p.AddSupplement(Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddIntake(Intake("i1", "u1", "s1", 1, Base)); err != nil {
		t.Fatal(err)
	}

	_, err := p.GetSupplement("u2", "s1")
	mustNotFound(t, err, storage.KindSupplement)
	mustNotFound(t, p.DeleteSupplement("u2", "s1"), storage.KindSupplement)
	mustNotFound(t, p.DeleteIntake("u2", "i1"), storage.KindIntake)
	if in, _ := p.GetIntakes("u2", models.IntakeFilter{}); len(in) != 0 {
		t.Errorf("u2 sees u1's intakes: %v", in)
	}
}

func testSnapshot(t *testing.T, p storage.Provider) {
	if err := p.AddProfile(Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSupplement(Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddIntake(Intake("i1", "u1", "s1", 1, Base)); err != nil {
		t.Fatal(err)
	}

	snap, err := storage.Export(p, "u1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var buf bytes.Buffer
	if err := storage.WriteSnapshot(&buf, snap); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if err := p.DeleteProfile("u1"); err != nil {
		t.Fatal(err)
	}

	restored, err := storage.ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	stats, err := storage.Import(p, restored)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if diff := cmp.Diff(storage.ImportStats{Profiles: 1, Supplements: 1, Intakes: 1}, stats); diff != "" {
		t.Errorf("first import stats (-want +got):\n%s", diff)
	}

	stats, err = storage.Import(p, restored)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if diff := cmp.Diff(storage.ImportStats{Skipped: 3}, stats); diff != "" {
		t.Errorf("second import should add nothing (-want +got):\n%s", diff)
	}

	again, err := storage.Export(p, "u1")
	if err != nil {
		t.Fatalf("Export after import: %v", err)
	}
	if diff := cmp.Diff(snap.Intakes, again.Intakes); diff != "" {
		t.Errorf("restored intakes differ (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(snap.Supplements, again.Supplements); diff != "" {
		t.Errorf("restored supplements differ (-before +after):\n%s", diff)
	}
}
