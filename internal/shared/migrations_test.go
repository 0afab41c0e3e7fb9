package shared

import "testing"

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	// Idempotent on a second pass.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() second run error = %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO resolutions (song_key, track_id, matched_title, matched_artist, tier, score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"yellow|coldplay", 12345, "Yellow", "Coldplay", "High", 18,
	); err != nil {
		t.Fatalf("insert into resolutions error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("resolutions count = %d, want 1", count)
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}

	if _, err := db.Exec("SELECT 1 FROM resolutions"); err == nil {
		t.Error("resolutions table still exists after rollback")
	}

	if err := RollbackMigration(db); err == nil {
		t.Error("RollbackMigration() expected error with nothing applied")
	}
}
