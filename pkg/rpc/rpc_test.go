package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nilsio/trackerd/pkg/fileindex"
	"github.com/nilsio/trackerd/pkg/session"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

type fakeStore struct {
	mu    sync.Mutex
	users map[string]*trackerstore.User
	files []*trackerstore.UserFile
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*trackerstore.User)}
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
func (f *fakeStore) Healthcheck(ctx context.Context) error                        { return nil }
func (f *fakeStore) IsHealthy() bool                                              { return true }
func (f *fakeStore) Close() error                                                 { return nil }

var _ trackerstore.Store = (*fakeStore)(nil)

func newTestServer() (http.Handler, *session.Manager) {
	store := newFakeStore()
	sessions := session.NewManager(store, 3)
	index := fileindex.New(store, sessions, 10, nil)
	srv := NewServer(sessions, index, store, nil)
	return NewRouter(srv, store, 0), sessions
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) []string {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var result []string
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response not a JSON array: %s (err=%v)", rec.Body.String(), err)
	}
	return result
}

func TestRPC_LoginRegisterList(t *testing.T) {
	handler, _ := newTestServer()

	resp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "pw123456", IP: "10.0.0.1", Port: 1052})
	if resp[0] != "NEW" {
		t.Fatalf("expected NEW, got %v", resp)
	}
	token := resp[1]

	resp = postJSON(t, handler, "/rpc/registerFile", registerFileRequest{
		Token: token, Name: "alice", FileName: "report", FileType: "pdf", FilePath: "/home/a/", FileSize: 1024,
	})
	if resp[0] != "OK" {
		t.Fatalf("expected OK, got %v", resp)
	}

	resp = postJSON(t, handler, "/rpc/getUserFiles", tokenNameRequest{Token: token, Name: "alice"})
	if resp[0] != "OK" || len(resp) != 6 {
		t.Fatalf("expected OK with 5 fields, got %v", resp)
	}
	if resp[2] != "report" || resp[3] != "pdf" {
		t.Fatalf("unexpected file row: %v", resp)
	}
}

func TestRPC_CopyLogin(t *testing.T) {
	handler, _ := newTestServer()
	postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "pw123456", IP: "10.0.0.1", Port: 1052})

	resp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "pw123456", IP: "10.0.0.2", Port: 1053})
	if resp[0] != "COPY" {
		t.Fatalf("expected COPY, got %v", resp)
	}
}

func TestRPC_WrongPassword(t *testing.T) {
	handler, _ := newTestServer()
	resp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "pw123456", IP: "10.0.0.1", Port: 1052})
	token := resp[1]
	postJSON(t, handler, "/rpc/disconnectFromServer", tokenNameRequest{Token: token, Name: "alice"})

	resp = postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "wrongpass", IP: "10.0.0.1", Port: 1052})
	if resp[0] != "PASSWORD" {
		t.Fatalf("expected PASSWORD, got %v", resp)
	}
}

func TestRPC_SearchLivenessFilter(t *testing.T) {
	handler, _ := newTestServer()

	aliceResp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "alice", Password: "pw123456", IP: "10.0.0.1", Port: 1052})
	aliceToken := aliceResp[1]
	postJSON(t, handler, "/rpc/registerFile", registerFileRequest{
		Token: aliceToken, Name: "alice", FileName: "report", FileType: "pdf", FilePath: "/home/a/", FileSize: 1024,
	})

	bobResp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "bobby", Password: "pw123456", IP: "10.0.0.2", Port: 1053})
	bobToken := bobResp[1]

	resp := postJSON(t, handler, "/rpc/searchFile", searchFileRequest{Token: bobToken, Name: "bobby", Query: "rep"})
	if resp[0] != "OK" {
		t.Fatalf("expected OK while alice is live, got %v", resp)
	}

	postJSON(t, handler, "/rpc/disconnectFromServer", tokenNameRequest{Token: aliceToken, Name: "alice"})

	resp = postJSON(t, handler, "/rpc/searchFile", searchFileRequest{Token: bobToken, Name: "bobby", Query: "rep"})
	if resp[0] != "404" {
		t.Fatalf("expected 404 once alice disconnects, got %v", resp)
	}
}

func TestRPC_ValidationRejectsShortName(t *testing.T) {
	handler, _ := newTestServer()
	resp := postJSON(t, handler, "/rpc/connectToServer", connectRequest{Name: "ab", Password: "pw123456", IP: "10.0.0.1", Port: 1052})
	if resp[0] != "ERROR" {
		t.Fatalf("expected ERROR for a too-short name, got %v", resp)
	}
}

func TestRPC_HealthEndpoints(t *testing.T) {
	handler, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health/ready, got %d", rec.Code)
	}
}
