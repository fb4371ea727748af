package trackerclient

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nilsio/trackerd/pkg/fileindex"
	"github.com/nilsio/trackerd/pkg/rpc"
	"github.com/nilsio/trackerd/pkg/session"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// fakeStore is a minimal in-memory trackerstore.Store sufficient to drive a
// real rpc.Server/Router behind an httptest.Server for end-to-end client tests.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*trackerstore.User
	files []*trackerstore.UserFile
}

func newFakeStore() *fakeStore { return &fakeStore{users: make(map[string]*trackerstore.User)} }

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
	f.users[name] = &trackerstore.User{Name: name, Password: passwordHash, IP: ip, Port: port}
	return nil
}

func (f *fakeStore) UpdateUserIP(ctx context.Context, name, ip string) error         { return nil }
func (f *fakeStore) UpdateUserPort(ctx context.Context, name string, port int) error { return nil }

func (f *fakeStore) CountFiles(ctx context.Context, owner string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, file := range f.files {
		if file.OwnerName == owner {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FileExists(ctx context.Context, owner, name, fileType, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, file := range f.files {
		if file.OwnerName == owner && file.Name == name && file.Type == fileType && file.Path == path {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertFile(ctx context.Context, file *trackerstore.UserFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, file)
	return nil
}

func (f *fakeStore) DeleteFile(ctx context.Context, owner, name, fileType, path string) error {
	return nil
}

func (f *fakeStore) FilesOf(ctx context.Context, owner string) ([]*trackerstore.UserFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*trackerstore.UserFile
	for _, file := range f.files {
		if file.OwnerName == owner {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchFiles(ctx context.Context, ownerExcluded, querySubstring string) ([]*trackerstore.UserFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*trackerstore.UserFile
	for _, file := range f.files {
		if file.OwnerName != ownerExcluded {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeStore) HostsOf(ctx context.Context, fileID uint64, requesterExcluded string) ([]trackerstore.FileHost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []trackerstore.FileHost
	for _, file := range f.files {
		if file.FileID != fileID || file.OwnerName == requesterExcluded {
			continue
		}
		owner := f.users[file.OwnerName]
		if owner == nil {
			continue
		}
		out = append(out, trackerstore.FileHost{OwnerName: file.OwnerName, IP: owner.IP, Port: owner.Port, Path: file.Path})
	}
	return out, nil
}

func (f *fakeStore) FileIDInUse(ctx context.Context, fileID uint64) (bool, error) { return false, nil }
func (f *fakeStore) TotalFiles(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files), nil
}
func (f *fakeStore) Healthcheck(ctx context.Context) error { return nil }
func (f *fakeStore) IsHealthy() bool                        { return true }
func (f *fakeStore) Close() error                           { return nil }

var _ trackerstore.Store = (*fakeStore)(nil)

func newTestTracker(t *testing.T) (*Client, *session.Manager) {
	t.Helper()
	store := newFakeStore()
	sessions := session.NewManager(store, 3)
	index := fileindex.New(store, sessions, 10, nil)
	srv := rpc.NewServer(sessions, index, store, nil)
	router := rpc.NewRouter(srv, store, 0)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return New(server.URL, 5*time.Second), sessions
}

func TestClient_ConnectRegisterList(t *testing.T) {
	client, _ := newTestTracker(t)

	login, err := client.ConnectToServer("alice", "pw123456", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if login.Tag != "NEW" || login.Token == "" {
		t.Fatalf("expected NEW with a token, got %+v", login)
	}

	reg, err := client.RegisterFile(login.Token, "alice", "report", "pdf", "/home/a/", 1024)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Tag != "OK" {
		t.Fatalf("expected OK, got %+v", reg)
	}

	tag, entries, err := client.GetUserFiles(login.Token, "alice")
	if err != nil {
		t.Fatalf("getUserFiles: %v", err)
	}
	if tag != "OK" || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got tag=%s entries=%+v", tag, entries)
	}
	if entries[0].Name != "report" || entries[0].Size != 1024 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestClient_SearchAndHostLookup(t *testing.T) {
	client, _ := newTestTracker(t)

	alice, err := client.ConnectToServer("alice", "pw123456", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("connect alice: %v", err)
	}
	if _, err := client.RegisterFile(alice.Token, "alice", "report", "pdf", "/home/a/", 1024); err != nil {
		t.Fatalf("register: %v", err)
	}

	bob, err := client.ConnectToServer("bobby", "pw123456", "10.0.0.2", 1053)
	if err != nil {
		t.Fatalf("connect bob: %v", err)
	}

	tag, hits, err := client.SearchFile(bob.Token, "bobby", "rep")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if tag != "OK" || len(hits) != 1 {
		t.Fatalf("expected 1 hit, got tag=%s hits=%+v", tag, hits)
	}

	tag, hosts, err := client.GetFileHostInfo(bob.Token, "bobby", hits[0].FileID)
	if err != nil {
		t.Fatalf("host lookup: %v", err)
	}
	if tag != "OK" || len(hosts) != 1 {
		t.Fatalf("expected 1 host, got tag=%s hosts=%+v", tag, hosts)
	}
	if hosts[0].IP != "10.0.0.1" || hosts[0].Port != 1052 {
		t.Fatalf("unexpected host: %+v", hosts[0])
	}
}

func TestClient_WrongPassword(t *testing.T) {
	client, _ := newTestTracker(t)

	first, err := client.ConnectToServer("alice", "pw123456", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := client.DisconnectFromServer(first.Token, "alice"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	result, err := client.ConnectToServer("alice", "wrongpass", "10.0.0.1", 1052)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if result.Tag != "PASSWORD" {
		t.Fatalf("expected PASSWORD for a wrong password on an existing user, got %+v", result)
	}
}

func TestClient_Healthy(t *testing.T) {
	client, _ := newTestTracker(t)
	if !client.Healthy() {
		t.Fatal("expected tracker to report healthy")
	}
}
