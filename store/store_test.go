package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// openStores returns every store that can run in the test environment.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	stores := make(map[string]Store)

	d, err := Open(ctx, "dir:"+filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	stores["dir"] = d

	s, err := Open(ctx, "sqlite:"+filepath.Join(dir, "folio.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	stores["sqlite"] = s

	// FOLIO_TEST_REDIS is the url of a disposable redis database.
	if url := os.Getenv("FOLIO_TEST_REDIS"); url != "" {
		r, err := Open(ctx, url)
		if err != nil {
			t.Fatalf("Open(redis) error = %v", err)
		}
		stores["redis"] = r
	}

	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			key := "test-" + t.Name()[len("TestStores/"):]
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(new key) error = %v, want %v", err, ErrNotFound)
			}
			for _, content := range []string{"first\n", "second\n"} {
				if err := s.Put(ctx, key, []byte(content)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := s.Get(ctx, key)
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != content {
					t.Errorf("Get() = %q, want %q", got, content)
				}
			}
		})
	}
}

func TestSQLiteVersions(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "folio.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	for _, content := range []string{"a", "b", "c", "d"} {
		if err := s.Put(ctx, "main", []byte(content)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if n, err := s.Versions(ctx, "main"); err != nil || n != 4 {
		t.Errorf("Versions() = %d, %v want 4", n, err)
	}
	if err := s.Prune(ctx, "main", 2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n, err := s.Versions(ctx, "main"); err != nil || n != 2 {
		t.Errorf("Versions() after prune = %d, %v want 2", n, err)
	}
	if got, err := s.Get(ctx, "main"); err != nil || string(got) != "d" {
		t.Errorf("Get() = %q, %v want the latest version", got, err)
	}
}

func TestDirKeys(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir() error = %v", err)
	}
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := d.Put(context.Background(), key, nil); err == nil {
			t.Errorf("Put(%q) error = nil, want an invalid key", key)
		}
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(context.Background(), "ftp://host/x"); err == nil {
		t.Errorf("Open(ftp) error = nil, want an error")
	}
}
