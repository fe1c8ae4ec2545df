package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/langvote/internal/domain/model"
)

// savedState is the on-disk layout of the local state file.
type savedState struct {
	UserEmail      string                 `json:"userEmailSubmitted"`
	LastSubmission *model.SubmissionInput `json:"lastSubmission,omitempty"`
}

// LocalStore persists the user's last successful submission in a JSON file.
// It is only used to prefill the form.
type LocalStore struct {
	path string
}

// DefaultLocalStorePath returns state.json under the user config directory.
func DefaultLocalStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "langvote", "state.json"), nil
}

// NewLocalStore returns a store backed by the file at path.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Path returns the backing file path.
func (l *LocalStore) Path() string { return l.path }

// Save records in as the last successful submission.
func (l *LocalStore) Save(in model.SubmissionInput) error {
	buf, err := json.MarshalIndent(savedState{UserEmail: in.Email, LastSubmission: &in}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return fmt.Errorf("write local state: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace local state: %w", err)
	}
	return nil
}

// Load returns the saved submission. The flag is false when nothing has
// been saved yet.
func (l *LocalStore) Load() (model.SubmissionInput, bool, error) {
	st, ok, err := l.read()
	if err != nil || !ok || st.LastSubmission == nil {
		if ok && st.UserEmail != "" {
			return model.SubmissionInput{Email: st.UserEmail}, true, err
		}
		return model.SubmissionInput{}, false, err
	}
	return *st.LastSubmission, true, nil
}

// UserEmail returns the email of the last successful submission, or "".
func (l *LocalStore) UserEmail() (string, error) {
	st, _, err := l.read()
	return st.UserEmail, err
}

// HasSubmitted reports whether a submission has been saved.
func (l *LocalStore) HasSubmitted() bool {
	email, err := l.UserEmail()
	return err == nil && email != ""
}

// Clear forgets the saved submission.
func (l *LocalStore) Clear() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local state: %w", err)
	}
	return nil
}

func (l *LocalStore) read() (savedState, bool, error) {
	buf, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return savedState{}, false, nil
	}
	if err != nil {
		return savedState{}, false, fmt.Errorf("read local state: %w", err)
	}

	var st savedState
	if err := json.Unmarshal(buf, &st); err != nil {
		return savedState{}, false, fmt.Errorf("decode local state: %w", err)
	}
	return st, true, nil
}
