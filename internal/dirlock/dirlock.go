// Package dirlock serializes mutating commands per target directory with an
// advisory file lock.
package dirlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mediatidy/internal/batch"
	"mediatidy/internal/textutil"
)

// ErrLocked is returned when another process holds the lock for a directory.
var ErrLocked = fmt.Errorf("%w: directory is locked by another mediatidy process", batch.ErrAlreadyExists)

const maxTokenLength = 48

// Lock is a held directory lock.
type Lock struct {
	dir  string
	path string
	lock *flock.Flock
}

// Acquire takes the lock for target without waiting. Lock files live in lockDir.
func Acquire(lockDir, target string) (*Lock, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target, err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}

	path := filepath.Join(lockDir, LockName(abs))
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", abs, ErrLocked)
	}
	return &Lock{dir: abs, path: path, lock: fl}, nil
}

// LockName returns the lock file name for an absolute directory path. The
// readable token is suffixed with a hash so distinct paths never share a lock.
func LockName(absDir string) string {
	token := textutil.SanitizeToken(absDir)
	if len(token) > maxTokenLength {
		token = token[len(token)-maxTokenLength:]
	}
	sum := sha256.Sum256([]byte(filepath.Clean(absDir)))
	return token + "-" + hex.EncodeToString(sum[:6]) + ".lock"
}

// Dir returns the locked directory.
func (l *Lock) Dir() string { return l.dir }

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file stays on disk.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
