package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sydlexius/mintfront/internal/filesystem"
)

// ErrIllegalPath is returned when a derived filename would escape the
// metadata directory or is not a valid single path element.
var ErrIllegalPath = errors.New("illegal metadata filename")

// ErrNotFound is returned by Read for a file that does not exist.
var ErrNotFound = errors.New("metadata file not found")

const filePerm = 0o644

// Store writes metadata records into a single directory.
type Store struct {
	dir    string
	atomic bool
}

// NewStore returns a Store rooted at dir. When atomic is set, each write
// goes through a temp file and rename instead of truncating in place.
func NewStore(dir string, atomic bool) *Store {
	return &Store{dir: dir, atomic: atomic}
}

// Dir returns the directory metadata files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the metadata directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:gosec // G301: served as public static content
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	return nil
}

// Save writes the record body to <dir>/<artist>-<name>.json and returns the
// path written. An existing file with the same name is replaced.
func (s *Store) Save(ctx context.Context, rec *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := rec.Filename()
	if err := checkFilename(name); err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, name)

	write := filesystem.WriteFile
	if s.atomic {
		write = filesystem.WriteFileAtomic
	}
	if err := write(target, rec.Raw, filePerm); err != nil {
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	return target, nil
}

// Read returns the stored body for filename.
func (s *Store) Read(filename string) ([]byte, error) {
	if err := checkFilename(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename)) //nolint:gosec // G304: filename checked to be local
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return data, nil
}

// FileInfo describes a metadata file on disk.
type FileInfo struct {
	Filename string
	Size     int64
}

// List returns the .json files in the metadata directory sorted by name.
// A missing directory yields an empty list.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing metadata directory: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !IsMetadataFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Filename: e.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

// IsMetadataFile reports whether name is a metadata file rather than a temp
// file or some other static asset.
func IsMetadataFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !filesystem.IsTempName(name)
}

// SplitFilename recovers the artist and name segments from a filename. The
// split is at the first hyphen, so a hyphenated artist cannot be recovered
// exactly.
func SplitFilename(filename string) (artist, name string) {
	base := strings.TrimSuffix(filename, ".json")
	artist, name, ok := strings.Cut(base, "-")
	if !ok {
		return "", base
	}
	return artist, name
}

func checkFilename(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrIllegalPath, name)
	}
	return nil
}
