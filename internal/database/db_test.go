package database

import (
	"testing"
	"testing/fstest"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_quotes.up.sql":    {Data: []byte("CREATE TABLE quotes ();")},
		"001_records.up.sql":   {Data: []byte("CREATE TABLE records ();")},
		"001_records.down.sql": {Data: []byte("DROP TABLE records;")},
		"003_snaps.up.sql":     {Data: []byte("CREATE TABLE snaps ();")},
		"README.md":            {Data: []byte("notes")},
	}

	got, err := pendingMigrations(fsys, map[string]bool{"002_quotes.up.sql": true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_records.up.sql", "003_snaps.up.sql"}
	if len(got) != len(want) {
		t.Fatalf("pending = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pending[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
