package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	if s.GetFileSetting("/a.csv", KeyUseHeader) {
		t.Fatalf("missing setting must read false")
	}
	if err := s.SetFileSetting("/a.csv", KeyUseHeader, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFileSetting("/b.csv", KeyUseHeader, false); err != nil {
		t.Fatal(err)
	}
	if !s.GetFileSetting("/a.csv", KeyUseHeader) {
		t.Fatalf("a.csv lost use_header")
	}
	if s.GetFileSetting("/b.csv", KeyUseHeader) {
		t.Fatalf("b.csv use_header should be false")
	}
	if err := s.SetFileSetting("/a.csv", KeyUseHeader, false); err != nil {
		t.Fatal(err)
	}
	if s.GetFileSetting("/a.csv", KeyUseHeader) {
		t.Fatalf("update not applied")
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s, err := OpenJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, s)
	if err := s.SetFileSetting("/c.csv", KeyUseHeader, true); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.GetFileSetting("/c.csv", KeyUseHeader) {
		t.Fatalf("setting not persisted")
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"csv_per_file_setting"`) || !strings.Contains(string(b), `"file": "/c.csv"`) {
		t.Fatalf("unexpected document: %s", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestJSONStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenJSON(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, s)
	if err := s.SetFileSetting("/c.csv", KeyUseHeader, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !s.GetFileSetting("/c.csv", KeyUseHeader) {
		t.Fatalf("setting not persisted")
	}
}

func TestOverride(t *testing.T) {
	m := NewMemoryStore()
	_ = m.SetFileSetting("/a.csv", "other", true)
	o := Override{Reader: m, Key: KeyUseHeader, Value: true}
	if !o.GetFileSetting("/a.csv", KeyUseHeader) {
		t.Fatalf("override ignored")
	}
	if !o.GetFileSetting("/a.csv", "other") {
		t.Fatalf("other keys must pass through")
	}
}

func TestIdentity(t *testing.T) {
	if Identity("") != StdinIdentity {
		t.Fatalf("empty path")
	}
	id := Identity("data.csv")
	if !filepath.IsAbs(id) || filepath.Base(id) != "data.csv" {
		t.Fatalf("identity %q", id)
	}
}
