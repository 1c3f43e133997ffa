package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/log"
)

// Durable layout: two files under the state dir. Absence of either means
// no session.
const (
	profileFile = "profile.json"
	tokenFile   = "token"
)

// Store is the single owner of the current Session. It keeps the in-memory
// value and the durable files consistent: Set either lands both or neither.
//
// Only the auth flow may call Set, Patch and Clear; every other component
// reads snapshots through Current (see the Reader interface).
type Store struct {
	dir     string
	current *Session
	logger  *log.Logger
}

// Reader is the read-only view of the store handed to consumers that must
// not mutate session state.
type Reader interface {
	Current() *Session
}

// Open creates a Store rooted at dir and rehydrates any persisted session.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeSessionInvalid, "state dir must not be empty")
	}

	s := &Store{
		dir:    dir,
		logger: log.DefaultLogger().WithGroup("session"),
	}
	s.current = s.load()
	return s, nil
}

// Current returns a snapshot of the session, or nil when logged out.
func (s *Store) Current() *Session {
	return s.current.clone()
}

// load rehydrates the session from the durable files. Any malformed or
// half-present record is treated as absent, never as an error: the stale
// sibling file is removed so the layout returns to a clean logged-out state.
func (s *Store) load() *Session {
	tokenData, tokenErr := os.ReadFile(s.tokenPath())
	profileData, profileErr := os.ReadFile(s.profilePath())

	if tokenErr != nil || profileErr != nil {
		if tokenErr == nil || profileErr == nil {
			// One file without the other is an orphaned record.
			s.removeFiles()
		}
		return nil
	}

	token := strings.TrimSpace(string(tokenData))
	if token == "" {
		s.removeFiles()
		return nil
	}

	var user User
	if err := json.Unmarshal(profileData, &user); err != nil {
		s.logger.Debug("discarding corrupt persisted profile", "cause", err.Error())
		s.removeFiles()
		return nil
	}
	if user.Email == "" {
		s.removeFiles()
		return nil
	}

	return &Session{User: &user, Token: token}
}

// Set atomically replaces the session in memory and on disk. When the
// durable write fails, the previous durable state is restored and memory
// keeps its prior value, so the two never diverge.
func (s *Store) Set(sess *Session) error {
	if !sess.Valid() {
		return errors.New(errors.ErrCodeSessionInvalid, "session requires both user and token")
	}

	prevToken, _ := os.ReadFile(s.tokenPath())
	prevProfile, _ := os.ReadFile(s.profilePath())

	if err := s.persist(sess); err != nil {
		s.restore(prevToken, prevProfile)
		return errors.Wrap(errors.ErrCodeSessionPersist, "persisting session", err)
	}

	s.current = sess.clone()
	s.logger.Debug("session stored", "email", sess.User.Email, "verified", sess.User.IsVerified)
	return nil
}

// Patch applies a mutation to a copy of the current user and re-persists
// the full session. Used only to flip the verification flag.
func (s *Store) Patch(mutate func(*User)) error {
	if s.current == nil {
		return errors.New(errors.ErrCodeSessionAbsent, "no session to patch")
	}

	next := s.current.clone()
	mutate(next.User)
	return s.Set(next)
}

// Clear removes the session from memory and durable storage.
func (s *Store) Clear() error {
	s.current = nil
	s.removeFiles()
	s.logger.Debug("session cleared")
	return nil
}

func (s *Store) persist(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	profileData, err := json.MarshalIndent(sess.User, "", "  ")
	if err != nil {
		return err
	}

	if err := writeFileAtomic(s.tokenPath(), []byte(sess.Token), 0o600); err != nil {
		return err
	}
	return writeFileAtomic(s.profilePath(), profileData, 0o644)
}

func (s *Store) restore(prevToken, prevProfile []byte) {
	if prevToken == nil || prevProfile == nil {
		s.removeFiles()
		return
	}
	// Best effort: a failed restore still leaves load() treating the
	// half-written record as absent.
	_ = writeFileAtomic(s.tokenPath(), prevToken, 0o600)
	_ = writeFileAtomic(s.profilePath(), prevProfile, 0o644)
}

func (s *Store) removeFiles() {
	_ = os.Remove(s.tokenPath())
	_ = os.Remove(s.profilePath())
}

func (s *Store) tokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s *Store) profilePath() string {
	return filepath.Join(s.dir, profileFile)
}

// writeFileAtomic writes via a temp file and rename so readers never see a
// partially written record.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
