package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"formkeeper/pkg/domain"
	"formkeeper/pkg/workflow"
)

// sessionState is the on-disk session, so the CLI stays signed in
// across invocations.
type sessionState struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func sessionFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "formkeeper", "session.json"), nil
}

func loadSession() (workflow.Session, bool) {
	path, err := sessionFilePath()
	if err != nil {
		return workflow.Session{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.Session{}, false
	}
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil || state.Token == "" {
		return workflow.Session{}, false
	}
	return workflow.Session{User: state.User, Token: state.Token}, true
}

func saveSession(s workflow.Session) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.Marshal(sessionState{Token: s.Token, User: s.User})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession() error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
