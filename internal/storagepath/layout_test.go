package storagepath

import (
	"os"
	"path/filepath"
	"testing"
)

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{
		DicomStore: filepath.Join(t.TempDir(), "dicm"),
		JSONStore:  filepath.Join(t.TempDir(), "json"),
	}
}

func TestInstanceFilePath(t *testing.T) {
	l := testLayout(t)
	got, err := l.InstanceFile("t1", "20240115", "1.2.3", "1.2.3.1", "1.2.3.1.1", false)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(l.DicomStore, "t1", "20240115", "1.2.3", "1.2.3.1", "1.2.3.1.1.dcm")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSeriesJSONPath(t *testing.T) {
	l := testLayout(t)
	got, err := l.SeriesJSONFile("t1", "20240115", "1.2.3", "1.2.3.1", false)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(l.JSONStore, "t1", "metadata", "20240115", "1.2.3", "1.2.3.1.json")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCreateIfMissingIsIdempotent(t *testing.T) {
	l := testLayout(t)
	for i := 0; i < 2; i++ {
		dir, err := l.SeriesDir("t1", "20240115", "1.2.3", "1.2.3.1", true)
		if err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("series dir not created: %v", err)
		}
	}
}

func TestPathsInjectivePerTenant(t *testing.T) {
	l := testLayout(t)
	seen := map[string]bool{}
	for _, c := range []struct{ study, series, sop string }{
		{"1.2.3", "1.2.3.1", "1.2.3.1.1"},
		{"1.2.3", "1.2.3.1", "1.2.3.1.2"},
		{"1.2.3", "1.2.3.2", "1.2.3.1.1"},
		{"1.2.4", "1.2.3.1", "1.2.3.1.1"},
	} {
		p, err := l.InstanceFile("t1", "20240115", c.study, c.series, c.sop, false)
		if err != nil {
			t.Fatal(err)
		}
		if seen[p] {
			t.Errorf("duplicate path %s", p)
		}
		seen[p] = true
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	if err := WriteFileAtomic(path, []byte(`{"ok":true}`)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected content %q", data)
	}
	// No temp residue.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dcm")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("overwrite failed, got %q", data)
	}
}
