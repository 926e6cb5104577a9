package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys under which a session is persisted.
const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"
)

// Session is a persisted token and the user it belongs to.
type Session struct {
	Token string
	User  *User
}

// SessionStore persists the session. Save and Clear always write both keys
// together.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

func encodeSession(session Session) (map[string]string, error) {
	values := map[string]string{KeyToken: session.Token}
	if session.User != nil {
		raw, err := json.Marshal(session.User)
		if err != nil {
			return nil, fmt.Errorf("encode user: %w", err)
		}
		values[KeyUser] = string(raw)
	}
	return values, nil
}

// decodeSession returns nil when no token is stored. A corrupt user record
// is dropped rather than failing the load.
func decodeSession(values map[string]string) *Session {
	token := values[KeyToken]
	if token == "" {
		return nil
	}
	session := &Session{Token: token}
	if raw := values[KeyUser]; raw != "" {
		var user User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			session.User = &user
		}
	}
	return session
}

// MemoryStore keeps the session in process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeSession(s.values), nil
}

func (s *MemoryStore) Save(_ context.Context, session Session) error {
	values, err := encodeSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.values = map[string]string{}
	s.mu.Unlock()
	return nil
}

// FileStore keeps the session as a JSON object in a file readable only by
// the current user.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore uses path, creating parent directories on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is ~/.config/lostfound/session.json or the platform
// equivalent.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lostfound", "session.json"), nil
}

func (s *FileStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil
	}
	return decodeSession(values), nil
}

func (s *FileStore) Save(_ context.Context, session Session) error {
	values, err := encodeSession(session)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
