package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestGetCurrentVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(nil))

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if version, _ = runner.GetCurrentVersion(); version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"003_intake_notes.sql": "ALTER TABLE intakes ADD COLUMN notes TEXT;",
		"001_init.sql":         "CREATE TABLE intakes (id TEXT);",
		"002_index.sql":        "CREATE INDEX idx ON intakes(id);",
		"README.md":            "ignored",
	}))

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}

	var got []string
	for _, m := range migrations {
		got = append(got, m.Name)
	}
	if strings.Join(got, ",") != "init,index,intake_notes" {
		t.Errorf("unexpected migration order: %v", got)
	}
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": ""}, wantErr: "invalid migration filename"},
		{name: "non numeric", files: map[string]string{"abc_init.sql": ""}, wantErr: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}, wantErr: "version must be at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "", "01_b.sql": ""}, wantErr: "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), migrationFS(tt.files)).ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadMigrationFiles() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_init.sql": `
			CREATE TABLE supplements (id TEXT PRIMARY KEY, name TEXT);
			CREATE TABLE intakes (id TEXT PRIMARY KEY, supplement_id TEXT);
		`,
	}

	var logged []string
	count, err := NewRunner(db, migrationFS(files)).ApplyMigrations(func(s string) { logged = append(logged, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
	if !tableExists(t, db, "supplements") || !tableExists(t, db, "intakes") {
		t.Error("tables were not created")
	}
	if len(logged) == 0 {
		t.Error("expected progress messages")
	}

	// A later release ships a second migration.
	files["002_notes.sql"] = "ALTER TABLE intakes ADD COLUMN notes TEXT;"
	runner := NewRunner(db, migrationFS(files))

	pending, err := runner.Pending()
	if err != nil || pending != 1 {
		t.Errorf("Pending() = %d, %v; want 1", pending, err)
	}
	if count, err = runner.ApplyMigrations(nil); err != nil || count != 1 {
		t.Fatalf("incremental ApplyMigrations = %d, %v", count, err)
	}
	if version, _ := runner.GetCurrentVersion(); version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if count, err = runner.ApplyMigrations(nil); err != nil || count != 0 {
		t.Errorf("re-running ApplyMigrations = %d, %v; want no-op", count, err)
	}
	if pending, _ = runner.Pending(); pending != 0 {
		t.Errorf("Pending() = %d after apply", pending)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE profiles (id TEXT PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}))

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}
	if version, _ := runner.GetCurrentVersion(); version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "profiles") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"001_init.sql": `CREATE TABLE profiles (id TEXT PRIMARY KEY);`,
	}))

	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("fresh database should validate, got %v", err)
	}
	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Fatal("ValidateVersion should have failed with newer database version")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with newer database version")
	}
}

func TestDialect(t *testing.T) {
	if SQLite.placeholder() != "?" || Postgres.placeholder() != "$1" {
		t.Errorf("unexpected placeholders %q %q", SQLite.placeholder(), Postgres.placeholder())
	}
	if Postgres.String() != "postgres" || SQLite.String() != "sqlite" {
		t.Errorf("unexpected dialect names")
	}
}
