// Package media manages the local media tree (uploaded documents, generated
// audio, avatars) served by the router under /media.
package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

const (
	SubdirDocuments = "documents"
	SubdirAudio     = "audio"
	SubdirAvatars   = "avatars"
)

type Store struct {
	root string
	log  *logger.Logger
}

// NewStore resolves the media root and creates the standard subdirectories.
func NewStore(root string, baseLog *logger.Logger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("Failed to resolve media root: %w", err)
	}
	for _, subdir := range []string{SubdirDocuments, SubdirAudio, SubdirAvatars} {
		if err := os.MkdirAll(filepath.Join(abs, subdir), 0o755); err != nil {
			return nil, fmt.Errorf("Failed to create media directory %s: %w", subdir, err)
		}
	}
	return &Store{root: abs, log: baseLog.With("service", "MediaStore")}, nil
}

func (s *Store) Root() string { return s.root }

// Dir returns the absolute path of a media subdirectory.
func (s *Store) Dir(subdir string) string {
	return filepath.Join(s.root, subdir)
}

// Save writes data under subdir using a sanitized file name. When the name is
// already taken a short random suffix is inserted before the extension. The
// returned path is media-relative with forward slashes, e.g.
// "documents/notes_1a2b3c4d.pdf".
func (s *Store) Save(subdir, name string, data []byte) (string, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return "", fmt.Errorf("Invalid file name %q", name)
	}
	if err := os.MkdirAll(filepath.Join(s.root, subdir), 0o755); err != nil {
		return "", fmt.Errorf("Failed to create media directory %s: %w", subdir, err)
	}

	final := clean
	target := filepath.Join(s.root, subdir, final)
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(clean)
		base := strings.TrimSuffix(clean, ext)
		final = fmt.Sprintf("%s_%s%s", base, randomSuffix(), ext)
		target = filepath.Join(s.root, subdir, final)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("Failed to write media file: %w", err)
	}
	relPath := subdir + "/" + final
	s.log.Debug("Stored media file", "path", relPath, "bytes", len(data))
	return relPath, nil
}

// Remove deletes a stored file. Removing a file that is already gone is not
// an error.
func (s *Store) Remove(relPath string) error {
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Failed to remove media file %s: %w", relPath, err)
	}
	return nil
}

// Open opens a stored file for reading.
func (s *Store) Open(relPath string) (*os.File, error) {
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// AbsPath maps a media-relative path to an absolute one, rejecting anything
// that escapes the media root.
func (s *Store) AbsPath(relPath string) (string, error) {
	joined := filepath.Join(s.root, filepath.FromSlash(relPath))
	cleaned := filepath.Clean(joined)
	if cleaned != s.root && !strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("Path %q escapes the media root", relPath)
	}
	return cleaned, nil
}

// URL returns the public URL for a stored file.
func (s *Store) URL(relPath string) string {
	return "/media/" + strings.TrimPrefix(relPath, "/")
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	return out
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}
