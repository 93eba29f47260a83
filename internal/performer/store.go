package performer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mediasort/internal/logging"
	"mediasort/internal/services"
	"mediasort/internal/textutil"
)

const (
	defaultLockTimeout = 10 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// Index is a loaded snapshot of the store plus its derived inverse map.
type Index struct {
	dirs   map[string][]string
	byName map[string]string
}

func newIndex(dirs map[string][]string) *Index {
	if dirs == nil {
		dirs = make(map[string][]string)
	}
	idx := &Index{dirs: dirs, byName: make(map[string]string)}
	names := idx.Dirs()
	for _, dir := range names {
		idx.byName[dir] = dir
	}
	for _, dir := range names {
		for _, alias := range dirs[dir] {
			alias = strings.TrimSpace(alias)
			if _, taken := idx.byName[alias]; alias == "" || taken {
				continue
			}
			idx.byName[alias] = dir
		}
	}
	return idx
}

// Find returns the directory a name belongs to.
func (i *Index) Find(name string) (string, bool) {
	dir, ok := i.byName[strings.TrimSpace(name)]
	return dir, ok
}

// FindAny returns the directory of the first name that has one.
func (i *Index) FindAny(names []string) (string, bool) {
	for _, name := range names {
		if dir, ok := i.Find(name); ok {
			return dir, true
		}
	}
	return "", false
}

// Dirs lists directory names in sorted order.
func (i *Index) Dirs() []string {
	out := make([]string, 0, len(i.dirs))
	for dir := range i.dirs {
		out = append(out, dir)
	}
	slices.Sort(out)
	return out
}

// Aliases returns a copy of a directory's aliases.
func (i *Index) Aliases(dir string) []string {
	return slices.Clone(i.dirs[dir])
}

// Len is the number of directories.
func (i *Index) Len() int { return len(i.dirs) }

// Store is the file-backed alias store.
type Store struct {
	path        string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewStore returns a store persisted at path. A non-positive lockTimeout uses
// the default of ten seconds.
func NewStore(path string, lockTimeout time.Duration, logger *slog.Logger) *Store {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &Store{
		path:        path,
		lockTimeout: lockTimeout,
		logger:      logging.NewComponentLogger(logger, "alias_store"),
	}
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Load reads the store without locking. A missing file is an empty store.
func (s *Store) Load() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newIndex(nil), nil
		}
		return nil, fmt.Errorf("read alias store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return newIndex(nil), nil
	}
	var dirs map[string][]string
	if err := json.Unmarshal(data, &dirs); err != nil {
		return nil, fmt.Errorf("parse alias store %s: %w", s.path, err)
	}
	return newIndex(dirs), nil
}

// Merge records aliases for a performer. When any alias already belongs to a
// directory the new names are appended to it; otherwise a directory named
// after seed is created. The chosen directory is returned.
func (s *Store) Merge(ctx context.Context, seed string, aliases []string) (string, error) {
	seed = strings.TrimSpace(seed)
	aliases = textutil.Dedupe(append([]string{seed}, aliases...))
	if len(aliases) == 0 {
		return "", services.Wrap(services.ErrValidation, "alias_store", "merge", "no names supplied", nil)
	}
	if seed == "" {
		seed = aliases[0]
	}

	var chosen string
	err := s.update(ctx, func(idx *Index) (bool, error) {
		if dir, ok := idx.FindAny(aliases); ok {
			chosen = dir
			merged := textutil.Dedupe(append(idx.dirs[dir], aliases...))
			if len(merged) == len(idx.dirs[dir]) {
				return false, nil
			}
			idx.dirs[dir] = merged
			return true, nil
		}
		chosen = textutil.SanitizeFileName(seed)
		if chosen == "" {
			return false, services.Wrap(services.ErrValidation, "alias_store", "merge", fmt.Sprintf("name %q is not usable as a directory", seed), nil)
		}
		if _, taken := idx.dirs[chosen]; taken {
			base := chosen
			for n := 2; ; n++ {
				chosen = fmt.Sprintf("%s (%d)", base, n)
				if _, taken := idx.dirs[chosen]; !taken {
					break
				}
			}
			s.logger.Warn("performer directory name already taken; using a numbered directory",
				logging.String(logging.FieldEventType, "alias_dir_collision"),
				logging.String("performer", seed),
				logging.String("taken", base),
				logging.String("dir", chosen),
				logging.String(logging.FieldErrorHint, "merge the entries with alias add if they are the same performer"))
		}
		idx.dirs[chosen] = aliases
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return chosen, nil
}

// Remove deletes a directory entry and all its aliases.
func (s *Store) Remove(ctx context.Context, dir string) error {
	dir = strings.TrimSpace(dir)
	return s.update(ctx, func(idx *Index) (bool, error) {
		if _, ok := idx.dirs[dir]; !ok {
			return false, services.Wrap(services.ErrNotFound, "alias_store", "remove", dir, nil)
		}
		delete(idx.dirs, dir)
		return true, nil
	})
}

// update runs fn against a fresh read of the store under the exclusive lock
// and persists the result when fn reports a change.
func (s *Store) update(ctx context.Context, fn func(*Index) (bool, error)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create alias store directory: %w", err)
	}
	lockPath := s.path + ".lock"
	lock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	started := time.Now()
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrAliasStoreLockTimeout, "alias_store", "lock", fmt.Sprintf("%s not acquired within %s", lockPath, s.lockTimeout), err)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			s.logger.Warn("failed to release alias store lock",
				logging.String(logging.FieldEventType, "alias_store_unlock_failed"),
				logging.Error(uerr),
				logging.String(logging.FieldErrorHint, "remove "+lockPath+" if no mediasort process is running"),
				logging.String(logging.FieldImpact, "other writers may wait for the lock timeout"))
		}
	}()
	if waited := time.Since(started); waited > time.Second {
		s.logger.Debug("alias store lock acquired after wait", logging.Duration("waited", waited))
	}

	idx, err := s.Load()
	if err != nil {
		return err
	}
	changed, err := fn(idx)
	if err != nil || !changed {
		return err
	}
	if err := s.save(idx.dirs); err != nil {
		return fmt.Errorf("persist alias store: %w", err)
	}
	s.logger.Debug("alias store updated", logging.Int("directories", len(idx.dirs)), logging.String("path", s.path))
	return nil
}

// save replaces the store file through a temp file in the same directory.
func (s *Store) save(dirs map[string][]string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dirs); err != nil {
		return fmt.Errorf("marshal alias store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Entry is one directory and its aliases.
type Entry struct {
	Dir     string   `json:"dir"`
	Aliases []string `json:"aliases"`
}

// List returns every entry sorted by directory name.
func (s *Store) List() ([]Entry, error) {
	idx, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, idx.Len())
	for _, dir := range idx.Dirs() {
		out = append(out, Entry{Dir: dir, Aliases: idx.Aliases(dir)})
	}
	return out, nil
}
