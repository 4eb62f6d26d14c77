package locator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
)

const (
	// MaxCandidates caps how many selector candidates a group retains.
	MaxCandidates = 5

	locatorsFile = "locators.json"
)

// Group is one persisted selector group. The first selector is the most
// recently confirmed-working candidate.
type Group struct {
	Selectors []string `json:"selectors"`
	Hash      string   `json:"hash,omitempty"`
}

// Store persists selector groups into one locators.json per object folder.
type Store struct {
	objectsDir string
	logf       func(format string, args ...any)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogf sets the log sink for persistence warnings. Persistence failures
// are logged and swallowed so healing never fails an already-successful step.
func WithLogf(logf func(format string, args ...any)) StoreOption {
	return func(s *Store) { s.logf = logf }
}

func NewStore(objectsDir string, opts ...StoreOption) *Store {
	s := &Store{
		objectsDir: objectsDir,
		logf:       func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FilePath returns the locators file for an object folder.
func (s *Store) FilePath(folder string) string {
	return filepath.Join(s.objectsDir, folder, locatorsFile)
}

// Load reads every selector group of an object folder. A missing file is an
// empty map, not an error.
func (s *Store) Load(folder string) (map[string]*Group, error) {
	return readGroups(s.FilePath(folder))
}

func readGroups(path string) (map[string]*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Group), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var groups map[string]*Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if groups == nil {
		groups = make(map[string]*Group)
	}
	return groups, nil
}

// Promote moves winner to the front of existing, keeping the relative order
// of the untouched candidates and capping the result at MaxCandidates. An
// unseen winner is inserted at the front.
func Promote(existing []string, winner string) []string {
	promoted := make([]string, 0, len(existing)+1)
	promoted = append(promoted, winner)
	for _, s := range existing {
		if s != winner {
			promoted = append(promoted, s)
		}
	}
	if len(promoted) > MaxCandidates {
		promoted = promoted[:MaxCandidates]
	}
	return promoted
}

var unsafeRefChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

func sanitizeRef(ref string) string {
	return unsafeRefChars.ReplaceAllString(ref, "_")
}

// ApplyHealing persists a healed ordering for one selector group.
// candidates is the full runtime candidate list of the healed step; it
// seeds the stored ordering when the group has never been persisted.
//
// Two locks guard the write: a per-key lock serializes healing of the same
// logical element, and a file-wide lock plus re-read prevents lost updates
// when concurrent writers heal other keys in the same file. Both are
// best-effort advisory locks.
func (s *Store) ApplyHealing(folder, ref, winner string, candidates []string, hash string) error {
	if folder == "" || ref == "" {
		return nil
	}

	path := s.FilePath(folder)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}

	keyLock := flock.New(path + "." + sanitizeRef(ref) + ".lock")
	if err := keyLock.Lock(); err != nil {
		s.logf("locator store: per-key lock unavailable for %s: %v", ref, err)
	} else {
		defer func() { _ = keyLock.Unlock() }()
	}

	groups, err := readGroups(path)
	if err != nil {
		s.logf("locator store: %v", err)
		groups = make(map[string]*Group)
	}

	var existing []string
	if entry, ok := groups[ref]; ok {
		existing = entry.Selectors
	}
	base := existing
	if len(base) == 0 {
		base = candidates
	}
	promoted := Promote(base, winner)

	if equalStrings(promoted, existing) {
		return nil
	}

	globalLock := flock.New(path + ".global.lock")
	if err := globalLock.Lock(); err != nil {
		s.logf("locator store: global lock unavailable for %s: %v", path, err)
	} else {
		defer func() { _ = globalLock.Unlock() }()
	}

	// Re-read under the global lock to observe concurrent updates to other
	// keys made since the first read.
	latest, err := readGroups(path)
	if err != nil {
		s.logf("locator store: re-read failed, starting fresh: %v", err)
		latest = make(map[string]*Group)
	}

	if onDisk, ok := latest[ref]; ok {
		if equalStrings(onDisk.Selectors, promoted) || (hash != "" && onDisk.Hash == hash) {
			s.logf("locator store: on-disk selectors already up to date for %s", ref)
			return nil
		}
	}

	entry := &Group{Selectors: promoted}
	if hash != "" {
		entry.Hash = hash
	} else if onDisk, ok := latest[ref]; ok {
		entry.Hash = onDisk.Hash
	}
	latest[ref] = entry

	if err := writeGroupsAtomic(path, latest); err != nil {
		return fmt.Errorf("persisting healed selectors for %s: %w", ref, err)
	}
	s.logf("locator store: healed selector persisted to %s for %s", path, ref)
	return nil
}

// writeGroupsAtomic writes via temp-file-then-rename, flushing to disk
// before the rename so a crash never leaves a partial file.
func writeGroupsAtomic(path string, groups map[string]*Group) error {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".locators-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
