package session

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// fakeStore is a minimal in-memory trackerstore.Store used to exercise the
// Session Manager without a real database.
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*trackerstore.User
	healthy bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*trackerstore.User), healthy: true}
}

func (f *fakeStore) FetchUser(ctx context.Context, name string) (*trackerstore.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[name]
	if !ok {
		return nil, trackerstore.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) InsertUser(ctx context.Context, name, passwordHash, ip string, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[name]; ok {
		return trackerstore.ErrUserExists
	}
	f.users[name] = &trackerstore.User{Name: name, Password: passwordHash, IP: ip, Port: port}
	return nil
}

func (f *fakeStore) UpdateUserIP(ctx context.Context, name, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[name]
	if !ok {
		return trackerstore.ErrUserNotFound
	}
	u.IP = ip
	return nil
}

func (f *fakeStore) UpdateUserPort(ctx context.Context, name string, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[name]
	if !ok {
		return trackerstore.ErrUserNotFound
	}
	u.Port = port
	return nil
}

func (f *fakeStore) CountFiles(ctx context.Context, owner string) (int, error) { return 0, nil }
func (f *fakeStore) FileExists(ctx context.Context, owner, name, fileType, path string) (bool, error) {
	return false, nil
}
func (f *fakeStore) InsertFile(ctx context.Context, file *trackerstore.UserFile) error { return nil }
func (f *fakeStore) DeleteFile(ctx context.Context, owner, name, fileType, path string) error {
	return nil
}
func (f *fakeStore) FilesOf(ctx context.Context, owner string) ([]*trackerstore.UserFile, error) {
	return nil, nil
}
func (f *fakeStore) SearchFiles(ctx context.Context, ownerExcluded, querySubstring string) ([]*trackerstore.UserFile, error) {
	return nil, nil
}
func (f *fakeStore) HostsOf(ctx context.Context, fileID uint64, requesterExcluded string) ([]trackerstore.FileHost, error) {
	return nil, nil
}
func (f *fakeStore) FileIDInUse(ctx context.Context, fileID uint64) (bool, error) { return false, nil }
func (f *fakeStore) TotalFiles(ctx context.Context) (int, error)                  { return 0, nil }
func (f *fakeStore) Healthcheck(ctx context.Context) error                        { return nil }
func (f *fakeStore) IsHealthy() bool                                              { return f.healthy }
func (f *fakeStore) Close() error                                                 { return nil }

var _ trackerstore.Store = (*fakeStore)(nil)

func TestManager_LoginNewUser(t *testing.T) {
	store := newFakeStore()
	mgr := NewManager(store, 10)
	ctx := context.Background()

	result, err := mgr.Login(ctx, "alice", "hunter2", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeNew {
		t.Fatalf("expected NEW, got %v", result.Outcome)
	}
	if result.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if !mgr.Table().IsActive("alice") {
		t.Fatal("expected alice to be active after login")
	}

	u, _ := store.FetchUser(ctx, "alice")
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("hunter2")) != nil {
		t.Fatal("expected stored password to be a bcrypt hash of the login password")
	}
}

func TestManager_LoginExistingUser(t *testing.T) {
	store := newFakeStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcryptCost)
	store.users["alice"] = &trackerstore.User{Name: "alice", Password: string(hash), IP: "10.0.0.1", Port: 1052}

	mgr := NewManager(store, 10)
	ctx := context.Background()

	result, err := mgr.Login(ctx, "alice", "hunter2", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeOK {
		t.Fatalf("expected OK for unchanged address, got %v", result.Outcome)
	}

	mgr.Disconnect(ctx, result.Token, "alice")
	result, err = mgr.Login(ctx, "alice", "hunter2", "10.0.0.2", 1052)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUpdate {
		t.Fatalf("expected UPDATE for changed ip, got %v", result.Outcome)
	}
}

func TestManager_LoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcryptCost)
	store.users["alice"] = &trackerstore.User{Name: "alice", Password: string(hash), IP: "10.0.0.1", Port: 1052}

	mgr := NewManager(store, 10)
	result, _ := mgr.Login(context.Background(), "alice", "wrong", "10.0.0.1", 1052)
	if result.Outcome != OutcomePassword {
		t.Fatalf("expected PASSWORD, got %v", result.Outcome)
	}
}

func TestManager_LoginRejectsCopyAndFull(t *testing.T) {
	store := newFakeStore()
	mgr := NewManager(store, 2)
	ctx := context.Background()

	if _, err := mgr.Login(ctx, "alice", "pw", "10.0.0.1", 1052); err != nil {
		t.Fatal(err)
	}
	result, _ := mgr.Login(ctx, "alice", "pw", "10.0.0.1", 1052)
	if result.Outcome != OutcomeCopy {
		t.Fatalf("expected COPY for already-active peer, got %v", result.Outcome)
	}

	if _, err := mgr.Login(ctx, "bob", "pw", "10.0.0.2", 1053); err != nil {
		t.Fatal(err)
	}
	result, _ = mgr.Login(ctx, "carol", "pw", "10.0.0.3", 1054)
	if result.Outcome != OutcomeFull {
		t.Fatalf("expected FULL at capacity, got %v", result.Outcome)
	}
}

func TestManager_ResumeRotatesToken(t *testing.T) {
	store := newFakeStore()
	mgr := NewManager(store, 10)
	ctx := context.Background()

	login, _ := mgr.Login(ctx, "alice", "pw", "10.0.0.1", 1052)

	result, err := mgr.Resume(ctx, login.Token, "alice", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeOK {
		t.Fatalf("expected OK, got %v", result.Outcome)
	}
	if result.Token == login.Token {
		t.Fatal("expected a fresh token on resume")
	}

	if _, err := mgr.Resume(ctx, login.Token, "alice", "10.0.0.1", 1052); err != nil {
		t.Fatal(err)
	}
	stale, _ := mgr.Resume(ctx, login.Token, "alice", "10.0.0.1", 1052)
	if stale.Outcome != OutcomeCred {
		t.Fatalf("expected CRED when resuming with a stale token, got %v", stale.Outcome)
	}
}

func TestManager_DisconnectAndHeartbeat(t *testing.T) {
	store := newFakeStore()
	mgr := NewManager(store, 10)
	ctx := context.Background()

	login, _ := mgr.Login(ctx, "alice", "pw", "10.0.0.1", 1052)

	if outcome := mgr.Heartbeat(ctx, login.Token, "alice"); outcome != OutcomeOK {
		t.Fatalf("expected OK heartbeat, got %v", outcome)
	}
	if outcome := mgr.Heartbeat(ctx, "wrong-token", "alice"); outcome != OutcomeCred {
		t.Fatalf("expected CRED for wrong token, got %v", outcome)
	}

	if outcome := mgr.Disconnect(ctx, login.Token, "alice"); outcome != OutcomeOK {
		t.Fatalf("expected OK disconnect, got %v", outcome)
	}
	if outcome := mgr.Disconnect(ctx, login.Token, "alice"); outcome != OutcomeCred {
		t.Fatalf("expected CRED after already disconnected, got %v", outcome)
	}
}

func TestManager_NotReadyBeforeConfigured(t *testing.T) {
	mgr := NewManager(newFakeStore(), 0)
	if mgr.Ready() {
		t.Fatal("expected manager with maxUsers=0 to report not ready")
	}
	result, _ := mgr.Login(context.Background(), "alice", "pw", "10.0.0.1", 1052)
	if result.Outcome != OutcomeNotReady {
		t.Fatalf("expected NOT_READY, got %v", result.Outcome)
	}
}
