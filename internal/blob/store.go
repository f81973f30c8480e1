// Package blob is the media upload collaborator: it writes uploaded bytes to
// local disk and hands back a stable reference the chat channel stores
// verbatim. Nothing here ever inspects file contents.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the upload under a timestamped, sanitized name and returns the
// serving reference (/media/<name>).
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitize(filename))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return "/media/" + name, nil
}

// Dir is the directory uploads are written to, for the file server route.
func (s *Store) Dir() string { return s.dir }

// sanitize strips path separators and anything else unsafe in a filename.
func sanitize(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		out = "upload"
	}
	return out
}
