package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	clears atomic.Int32
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.clears.Add(1)
	return s.MemoryStore.Clear(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, handler http.Handler, store SessionStore) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL}, store)
	require.NoError(t, err)
	return c
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req["password"] != "emsi2024" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"code": "INVALID_CREDENTIALS", "message": "invalid credentials"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"token": "tok-123",
		"user":  map[string]any{"id": 2, "name": "User EMSI", "email": req["email"], "role": "User"},
	}})
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://localhost:8080/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestLoginPersistsSessionAndInjectsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 2, "role": "User"}})
	})
	store := NewMemoryStore()
	c := newTestClient(t, mux, store)
	a := NewAuthenticator(c)

	var states []State
	a.Subscribe(func(s State, _ *User) { states = append(states, s) })

	user, err := a.Login(context.Background(), "user@emsi.ma", "emsi2024")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.Equal(t, StateAuthenticated, a.State())
	assert.Equal(t, []State{StateAuthenticating, StateAuthenticated}, states)

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "tok-123", session.Token)
	require.NotNil(t, session.User)
	assert.Equal(t, "user@emsi.ma", session.User.Email)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
}

func TestLoginFailureReturnsToAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	store := &countingStore{MemoryStore: NewMemoryStore()}
	a := NewAuthenticator(newTestClient(t, mux, store))

	_, err := a.Login(context.Background(), "user@emsi.ma", "wrong")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, StateAnonymous, a.State())

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestFailedReloginDropsPreviousSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"code": "UNAUTHORIZED", "message": "missing token"},
		})
	})
	store := NewMemoryStore()
	c := newTestClient(t, mux, store)
	a := NewAuthenticator(c)

	_, err := a.Login(context.Background(), "user@emsi.ma", "emsi2024")
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "user@emsi.ma", "wrong")
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, a.State())

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnauthorizedClearsSessionWithoutRestore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"code": "UNAUTHORIZED", "message": "token expired"},
		})
	})
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), Session{Token: "old-token"}))
	c := newTestClient(t, mux, store)
	a := NewAuthenticator(c)

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StateAnonymous, a.State())

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestUnauthorizedTearsDownOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"code": "UNAUTHORIZED", "message": "token revoked"},
		})
	})
	store := &countingStore{MemoryStore: NewMemoryStore()}
	c := newTestClient(t, mux, store)
	a := NewAuthenticator(c)

	_, err := a.Login(context.Background(), "user@emsi.ma", "emsi2024")
	require.NoError(t, err)

	var anonymous atomic.Int32
	a.Subscribe(func(s State, _ *User) {
		if s == StateAnonymous {
			anonymous.Add(1)
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Notifications(context.Background())
			assert.True(t, errors.Is(err, ErrUnauthorized))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.clears.Load(), int32(1))
	assert.Equal(t, int32(1), anonymous.Load())
	assert.Equal(t, StateAnonymous, a.State())
	assert.Nil(t, a.User())

	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRequireRole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	a := NewAuthenticator(newTestClient(t, mux, nil))

	redirect, ok := a.RequireRole(RoleUser)
	assert.False(t, ok)
	assert.Equal(t, RedirectLogin, redirect)

	_, err := a.Login(context.Background(), "user@emsi.ma", "emsi2024")
	require.NoError(t, err)

	redirect, ok = a.RequireRole(RoleAdmin)
	assert.False(t, ok)
	assert.Equal(t, RedirectHome, redirect)

	redirect, ok = a.RequireRole(RoleUser)
	assert.True(t, ok)
	assert.Empty(t, redirect)

	_, ok = a.RequireRole("")
	assert.True(t, ok)
}

func TestLogoutClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", loginHandler)
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	store := NewMemoryStore()
	a := NewAuthenticator(newTestClient(t, mux, store))

	_, err := a.Login(context.Background(), "user@emsi.ma", "emsi2024")
	require.NoError(t, err)
	require.NoError(t, a.Logout(context.Background()))

	assert.Equal(t, StateAnonymous, a.State())
	session, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRestoreResumesSession(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), Session{Token: "t", User: &User{ID: 1, Role: RoleAdmin}}))
	a := NewAuthenticator(newTestClient(t, http.NewServeMux(), store))

	require.NoError(t, a.Restore(context.Background()))
	assert.Equal(t, StateAuthenticated, a.State())
	_, ok := a.RequireRole(RoleAdmin)
	assert.True(t, ok)
}

func TestForbiddenKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": "ADMIN_DELETE_FORBIDDEN", "message": "administrators cannot be deleted"},
		})
	})
	store := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, store.Save(context.Background(), Session{Token: "t"}))
	c := newTestClient(t, mux, store)

	err := c.DeleteUser(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "ADMIN_DELETE_FORBIDDEN", apiErr.Code)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Zero(t, store.clears.Load())
}

func TestListItemsEncodesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "iphone", q.Get("q"))
		assert.Equal(t, "Lost", q.Get("type"))
		assert.Equal(t, "pending,approved", q.Get("status"))
		assert.Equal(t, "2", q.Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"items": []map[string]any{{"id": 1, "description": "iPhone"}},
			"total": 1, "page": 2, "pageSize": 20,
		}})
	})
	c := newTestClient(t, mux, nil)

	page, err := c.ListItems(context.Background(), ItemQuery{
		Keyword:  "iphone",
		Types:    []string{"Lost"},
		Statuses: []string{"pending", "approved"},
		Page:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPhone", page.Items[0].Description)
}

func TestPing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/test", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	})
	require.NoError(t, newTestClient(t, mux, nil).Ping(context.Background()))

	down := http.NewServeMux()
	down.HandleFunc("/api/test", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "maintenance"})
	})
	assert.Error(t, newTestClient(t, down, nil).Ping(context.Background()))
}

func TestNotificationCenter(t *testing.T) {
	var readAll atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": 2, "message": "match", "type": "match", "read": false},
			{"id": 1, "message": "welcome", "type": "info", "read": false},
		}})
	})
	mux.HandleFunc("/api/notifications/2/read", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		readAll.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	center := NewNotificationCenter(newTestClient(t, mux, nil))

	var lastUnread int
	center.Subscribe(func(_ []Notification, unread int) { lastUnread = unread })

	require.NoError(t, center.Refresh(context.Background()))
	assert.Equal(t, 2, center.UnreadCount())

	require.NoError(t, center.MarkRead(context.Background(), 2))
	assert.Equal(t, 1, center.UnreadCount())
	assert.Equal(t, 1, lastUnread)

	require.NoError(t, center.MarkAllRead(context.Background()))
	assert.True(t, readAll.Load())
	assert.Zero(t, center.UnreadCount())
	assert.Zero(t, lastUnread)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	session, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, store.Save(ctx, Session{Token: "abc", User: &User{ID: 3, Name: "Sarah Ahmed"}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), KeyToken)
	assert.Contains(t, string(raw), KeyUser)

	session, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "abc", session.Token)
	assert.Equal(t, "Sarah Ahmed", session.User.Name)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	session, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	session, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}
