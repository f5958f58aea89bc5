// Package storage is the boundary to the blob store holding avatars and
// post images. Callers treat deletes as best-effort cleanup: a failed
// delete is logged and never fails the operation that triggered it.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage saves blobs under a logical folder and returns a reference that
// can later be served or deleted.
type Storage interface {
	Save(data []byte, folder, ext string) (string, error)
	Delete(ref string) error
}

// Local stores blobs on the local filesystem under a root directory.
// References are root-relative paths like "posts/3f2a... .png".
type Local struct {
	Root string
}

// NewLocal creates a local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{Root: dir}
}

// Save writes the blob under folder with a random name and returns its
// reference.
func (l *Local) Save(data []byte, folder, ext string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf) + ext

	dir := filepath.Join(l.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(folder, name)), nil
}

// Delete removes a previously saved blob. The reference is kept inside the
// root so a crafted ref cannot reach other paths.
func (l *Local) Delete(ref string) error {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid storage reference: %q", ref)
	}
	return os.Remove(filepath.Join(l.Root, clean))
}
