// Package workdir scopes changes to the process working directory.
//
// The working directory is global to the process, so only one Scope can be
// open at a time; Enter blocks until the previous Scope is restored.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrSetup indicates that a runner could not prepare its working directory.
var ErrSetup = errors.New("working directory setup failed")

// SetupError names the directory that could not be created.
type SetupError struct {
	Dir string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("error mkdir %s: %v", e.Dir, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func (e *SetupError) Is(target error) bool {
	return target == ErrSetup
}

var mu sync.Mutex

// Scope is an acquired working directory. Restore returns to the directory
// that was current when the scope was entered.
type Scope struct {
	prev string
	dir  string
	once sync.Once
	err  error
}

// Enter makes dir the current directory until the returned Scope is restored.
func Enter(dir string) (*Scope, error) {
	mu.Lock()
	prev, err := os.Getwd()
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("entering %s: %w", dir, err)
	}
	abs, _ := os.Getwd()
	return &Scope{prev: prev, dir: abs}, nil
}

// Create makes dir, which must not already exist, and enters it.
func Create(dir string) (*Scope, error) {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, &SetupError{Dir: dir, Err: err}
	}
	s, err := Enter(dir)
	if err != nil {
		return nil, &SetupError{Dir: dir, Err: err}
	}
	return s, nil
}

// Dir is the absolute path of the scoped directory.
func (s *Scope) Dir() string { return s.dir }

// Restore changes back to the previous directory. Safe to call more than once.
func (s *Scope) Restore() error {
	s.once.Do(func() {
		defer mu.Unlock()
		if err := os.Chdir(s.prev); err != nil {
			s.err = fmt.Errorf("restoring working directory %s: %w", s.prev, err)
		}
	})
	return s.err
}

// TempDir creates a uniquely named directory under parent and returns it
// with a cleanup func that removes it and everything inside.
func TempDir(parent, prefix string) (string, func() error, error) {
	dir := filepath.Join(parent, prefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", nil, &SetupError{Dir: dir, Err: err}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	cleanup := func() error {
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("removing %s: %w", abs, err)
		}
		return nil
	}
	return abs, cleanup, nil
}
