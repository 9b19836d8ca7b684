package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustParse(t *testing.T, body string) *Record {
	t.Helper()
	rec, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse(%s): %v", body, err)
	}
	return rec
}

func TestStore_SaveRoundTrip(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		name := "plain"
		if atomic {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewStore(dir, atomic)
			body := `{"name":"Cat","artist":"Alice","description":"a cat"}`

			path, err := store.Save(context.Background(), mustParse(t, body))
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if path != filepath.Join(dir, "Alice-Cat.json") {
				t.Errorf("path = %q", path)
			}

			got, err := store.Read("Alice-Cat.json")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(got) != body {
				t.Errorf("content = %q, want %q", got, body)
			}
		})
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	store := NewStore(t.TempDir(), false)
	ctx := context.Background()

	if _, err := store.Save(ctx, mustParse(t, `{"name":"Cat","artist":"Alice","v":1,"extra":"long field"}`)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second := `{"name":"Cat","artist":"Alice","v":2}`
	if _, err := store.Save(ctx, mustParse(t, second)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Read("Alice-Cat.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != second {
		t.Errorf("content = %q, want %q", got, second)
	}
}

func TestStore_IllegalPath(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "NFTs"), false)
	if err := store.EnsureDir(); err != nil {
		t.Fatal(err)
	}

	bodies := []string{
		`{"name":"Cat","artist":"../escape"}`,
		`{"name":"sub/Cat","artist":"Alice"}`,
		`{"name":"Cat","artist":"/etc/passwd"}`,
	}
	for _, body := range bodies {
		_, err := store.Save(context.Background(), mustParse(t, body))
		if !errors.Is(err, ErrIllegalPath) {
			t.Errorf("Save(%s) err = %v, want ErrIllegalPath", body, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the NFTs directory, found %d entries", len(entries))
	}
}

func TestStore_SaveMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"), false)
	_, err := store.Save(context.Background(), mustParse(t, `{"name":"Cat"}`))
	if err == nil {
		t.Fatal("expected error when the metadata directory is missing")
	}
	if errors.Is(err, ErrIllegalPath) {
		t.Error("missing directory should not be reported as an illegal path")
	}
}

func TestStore_SaveCanceledContext(t *testing.T) {
	store := NewStore(t.TempDir(), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, mustParse(t, `{"name":"Cat"}`)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStore_ReadNotFound(t *testing.T) {
	store := NewStore(t.TempDir(), false)
	if _, err := store.Read("Nobody-Nothing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, false)
	ctx := context.Background()

	for _, body := range []string{`{"name":"Zebra","artist":"Bob"}`, `{"name":"Cat","artist":"Alice"}`} {
		if _, err := store.Save(ctx, mustParse(t, body)); err != nil {
			t.Fatal(err)
		}
	}
	// Non-metadata entries are skipped.
	if err := os.WriteFile(filepath.Join(dir, ".Alice-Cat.json.99.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(files), files)
	}
	if files[0].Filename != "Alice-Cat.json" || files[1].Filename != "Bob-Zebra.json" {
		t.Errorf("unexpected order: %+v", files)
	}
	if files[0].Size == 0 {
		t.Error("expected size to be populated")
	}
}

func TestStore_ListMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"), false)
	files, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestSplitFilename(t *testing.T) {
	tests := []struct {
		in, artist, name string
	}{
		{"Alice-Cat.json", "Alice", "Cat"},
		{"None-Cat.json", "None", "Cat"},
		{"Alice-Black-Cat.json", "Alice", "Black-Cat"},
		{"solo.json", "", "solo"},
	}
	for _, tt := range tests {
		artist, name := SplitFilename(tt.in)
		if artist != tt.artist || name != tt.name {
			t.Errorf("SplitFilename(%q) = %q, %q; want %q, %q", tt.in, artist, name, tt.artist, tt.name)
		}
	}
}
