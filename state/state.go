// Package state persists the user's working selection between runs.
//
// The session controller takes its conversation context as an explicit
// value; this package is the host-side store for that value. It remembers
// which conversation was last active and which dataset and datasources
// each conversation is pinned to, so restarting the client resumes where
// the user left off.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultFileName is the state file name inside the config directory.
const DefaultFileName = "state.msgpack"

// Selection pins one conversation to its data scope.
type Selection struct {
	DatasetID     string    `msgpack:"dataset_id"`
	DatasourceIDs []string  `msgpack:"datasource_ids"`
	UpdatedAt     time.Time `msgpack:"updated_at"`
}

// fileState is the serialized shape.
type fileState struct {
	ActiveSessionID string               `msgpack:"active_session_id"`
	Selections      map[string]Selection `msgpack:"selections"`
}

// Store reads and writes the selection state file.
// Not safe for concurrent use; the host serializes access.
type Store struct {
	path  string
	state fileState
}

// DefaultPath returns the state file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("state: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "flow", DefaultFileName), nil
}

// Open loads the store at path, starting empty when the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		state: fileState{Selections: map[string]Selection{}},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(raw, &s.state); err != nil {
		return nil, fmt.Errorf("state: decode %s: %w", path, err)
	}
	if s.state.Selections == nil {
		s.state.Selections = map[string]Selection{}
	}
	return s, nil
}

// ActiveSessionID returns the last active conversation id, or "".
func (s *Store) ActiveSessionID() string {
	return s.state.ActiveSessionID
}

// SetActiveSession records which conversation is active.
func (s *Store) SetActiveSession(sessionID string) {
	s.state.ActiveSessionID = sessionID
}

// Selection returns the pinned data scope for a conversation.
func (s *Store) Selection(sessionID string) (Selection, bool) {
	sel, ok := s.state.Selections[sessionID]
	return sel, ok
}

// SetSelection pins a conversation to a dataset and datasource set.
func (s *Store) SetSelection(sessionID string, sel Selection) {
	sel.UpdatedAt = time.Now().UTC()
	s.state.Selections[sessionID] = sel
}

// Forget drops all state for a conversation.
func (s *Store) Forget(sessionID string) {
	delete(s.state.Selections, sessionID)
	if s.state.ActiveSessionID == sessionID {
		s.state.ActiveSessionID = ""
	}
}

// Save writes the state file atomically via a temp file rename.
func (s *Store) Save() error {
	raw, err := msgpack.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, DefaultFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: replace %s: %w", s.path, err)
	}
	return nil
}
