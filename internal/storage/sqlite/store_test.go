package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProvider(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return setupTestStore(t)
	})
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "suppleflow init") {
		t.Errorf("Load() on missing file = %v, want init hint", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	if err := store.AddProfile(storagetest.Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetProfile("u1"); err != nil {
		t.Errorf("profile lost across reopen: %v", err)
	}
}

func TestInitCreatesPrivateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store := NewStore(filepath.Join(dir, "suppleflow.db"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("config dir permissions = %o, want 700", perm)
	}
}

func TestSchemaStatus(t *testing.T) {
	store := setupTestStore(t)
	current, pending, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus: %v", err)
	}
	if current < 1 || pending != 0 {
		t.Errorf("SchemaStatus() = %d, %d; want migrated with nothing pending", current, pending)
	}
	if n, err := store.Migrate(nil); err != nil || n != 0 {
		t.Errorf("Migrate() on migrated store = %d, %v", n, err)
	}
}

func TestCopyBetweenStores(t *testing.T) {
	src := setupTestStore(t)
	dst := setupTestStore(t)

	if err := src.AddProfile(storagetest.Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}
	if err := src.AddSupplement(storagetest.Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	for _, in := range []models.Intake{
		storagetest.Intake("i1", "u1", "s1", 1, storagetest.Base),
		storagetest.Intake("i2", "u1", "s1", 2, storagetest.Base.Add(time.Hour)),
	} {
		if err := src.AddIntake(in); err != nil {
			t.Fatal(err)
		}
	}
	// Already present in dst: skipped rather than duplicated.
	if err := dst.AddProfile(storagetest.Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}

	stats, err := storage.Copy(src, dst)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if diff := cmp.Diff(storage.ImportStats{Supplements: 1, Intakes: 2, Skipped: 1}, stats); diff != "" {
		t.Errorf("copy stats (-want +got):\n%s", diff)
	}

	want, _ := src.GetIntakes("u1", models.IntakeFilter{})
	got, err := dst.GetIntakes("u1", models.IntakeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("copied intakes differ (-src +dst):\n%s", diff)
	}
}

func TestImportSkipsOrphanIntakes(t *testing.T) {
	store := setupTestStore(t)
	snap := storage.Snapshot{
		Version: constants.SnapshotVersion,
		Intakes: []models.Intake{storagetest.Intake("i1", "u1", "gone", 1, storagetest.Base)},
	}
	stats, err := storage.Import(store, snap)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Intakes != 0 || stats.Skipped != 1 {
		t.Errorf("Import stats = %+v, want orphan skipped", stats)
	}

	snap.Version = constants.SnapshotVersion + 1
	if _, err := storage.Import(store, snap); err == nil {
		t.Error("expected error for newer snapshot version")
	}
}

func TestImportSkipsIDsHeldByAnotherUser(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddProfile(storagetest.Profile("u1", "alice", 0)); err != nil {
		t.Fatal(err)
	}
	if err := store.AddSupplement(storagetest.Supplement("s1", "u1", "Magnesium", 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := store.AddIntake(storagetest.Intake("i1", "u1", "s1", 1, storagetest.Base)); err != nil {
		t.Fatal(err)
	}

	snap := storage.Snapshot{
		Version:  constants.SnapshotVersion,
		Profiles: []models.Profile{storagetest.Profile("u2", "bob", 0)},
		Supplements: []models.Supplement{
			storagetest.Supplement("s1", "u2", "Zinc", 1, 0),
			storagetest.Supplement("s2", "u2", "Iron", 1, 0),
		},
		Intakes: []models.Intake{
			storagetest.Intake("i1", "u2", "s2", 1, storagetest.Base),
			storagetest.Intake("i2", "u2", "s2", 1, storagetest.Base.Add(time.Hour)),
		},
	}
	stats, err := storage.Import(store, snap)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if diff := cmp.Diff(storage.ImportStats{Profiles: 1, Supplements: 1, Intakes: 1, Skipped: 2}, stats); diff != "" {
		t.Errorf("import stats (-want +got):\n%s", diff)
	}

	got, err := store.GetIntake("u1", "i1")
	if err != nil {
		t.Fatalf("GetIntake: %v", err)
	}
	if got.SupplementID != "s1" {
		t.Errorf("alice's intake was overwritten: %+v", got)
	}
	bob, err := store.GetIntakes("u2", models.IntakeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(bob) != 1 || bob[0].ID != "i2" {
		t.Errorf("bob's intakes = %+v, want only i2", bob)
	}
}
