package db

import "testing"

func TestOpen_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"invalid-dsn", "postgres://", "://localhost/db"} {
		pool, err := Open(dsn)
		if err == nil {
			if pool != nil {
				pool.Close()
			}
			t.Errorf("Open(%q) should return error", dsn)
		}
		if pool != nil && err != nil {
			t.Errorf("Open(%q) should return nil pool on error", dsn)
		}
	}
}

func TestMigrationFS_Embedded(t *testing.T) {
	entries, err := MigrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}
	var ups, downs int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			ups++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("unbalanced migrations: %d up, %d down", ups, downs)
	}
}
