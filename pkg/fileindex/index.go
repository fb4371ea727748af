// Package fileindex implements the File Index: registration, deregistration,
// listing, and search over the durable catalog, with search and host-lookup
// results filtered against the Active Peer Table's liveness.
package fileindex

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/metrics"
	"github.com/nilsio/trackerd/pkg/session"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// fileIDSpace bounds the random catalog-wide file identifiers handed out by
// Register, per the tracker's chosen range.
const fileIDSpace = 1_000_000

// maxFileIDAttempts bounds the probe-and-retry loop when picking a fresh
// file_id; collisions this wide across 1,000,000 slots are expected to be
// rare but not negligible at scale, unlike session tokens.
const maxFileIDAttempts = 64

// Outcome is the tagged result of a File Index operation.
type Outcome string

const (
	OutcomeOK    Outcome = "OK"
	OutcomeFull  Outcome = "FULL"
	OutcomeCopy  Outcome = "COPY"
	OutcomeError Outcome = "ERROR"
	OutcomeCred  Outcome = "CRED"
	OutcomeNone  Outcome = "404"
)

// Entry is a single catalog row as exposed by List.
type Entry struct {
	FileID uint64
	Name   string
	Type   string
	Path   string
	Size   int64
}

// SearchHit is a single catalog row as exposed by Search, which omits Path.
type SearchHit struct {
	FileID uint64
	Name   string
	Type   string
	Size   int64
}

// Host is a single (ip, port, path) tuple as exposed by HostLookup.
type Host struct {
	IP   string
	Port int
	Path string
}

// Index is the File Index. It authenticates every call through the Session
// Manager and couples the durable catalog to the ephemeral Active Peer Table.
type Index struct {
	store           trackerstore.Store
	sessions        *session.Manager
	maxFilesPerUser int
	metrics         metrics.TrackerMetrics
}

// New constructs an Index bound to store, sessions, and a per-owner file
// quota. m may be nil, in which case registered-file counts are not recorded.
func New(store trackerstore.Store, sessions *session.Manager, maxFilesPerUser int, m metrics.TrackerMetrics) *Index {
	return &Index{store: store, sessions: sessions, maxFilesPerUser: maxFilesPerUser, metrics: m}
}

// recordCatalogSize reports the catalog's total row count to metrics, if enabled.
func (idx *Index) recordCatalogSize(ctx context.Context) {
	if idx.metrics == nil {
		return
	}
	total, err := idx.store.TotalFiles(ctx)
	if err != nil {
		return
	}
	idx.metrics.SetRegisteredFiles(total)
}

func (idx *Index) verify(name, token string) bool {
	s, ok := idx.sessions.Table().Find(name)
	return ok && s.Token == token
}

// Register authenticates, enforces the per-owner file quota and the
// (owner, name, type, path) uniqueness constraint, then assigns a fresh
// random file_id and inserts the catalog row.
func (idx *Index) Register(ctx context.Context, token, name, fileName, fileType, filePath string, fileSize int64) Outcome {
	if !idx.verify(name, token) {
		return OutcomeCred
	}

	count, err := idx.store.CountFiles(ctx, name)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: count_files failed", logger.PeerName(name), logger.Err(err))
		return OutcomeError
	}
	if count >= idx.maxFilesPerUser {
		return OutcomeFull
	}

	exists, err := idx.store.FileExists(ctx, name, fileName, fileType, filePath)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: file_exists failed", logger.PeerName(name), logger.Err(err))
		return OutcomeError
	}
	if exists {
		return OutcomeCopy
	}

	fileID, err := idx.pickFileID(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: file_id allocation failed", logger.Err(err))
		return OutcomeError
	}

	row := &trackerstore.UserFile{
		FileID:    fileID,
		Name:      fileName,
		Type:      fileType,
		Path:      filePath,
		Size:      fileSize,
		OwnerName: name,
	}
	if err := idx.store.InsertFile(ctx, row); err != nil {
		if errors.Is(err, trackerstore.ErrFileExists) {
			return OutcomeCopy
		}
		logger.ErrorCtx(ctx, "file index: insert_file failed", logger.PeerName(name), logger.Err(err))
		return OutcomeError
	}
	idx.recordCatalogSize(ctx)
	return OutcomeOK
}

// Deregister authenticates then deletes the matching catalog row.
func (idx *Index) Deregister(ctx context.Context, token, owner, fileName, fileType, filePath string) Outcome {
	if !idx.verify(owner, token) {
		return OutcomeCred
	}
	if err := idx.store.DeleteFile(ctx, owner, fileName, fileType, filePath); err != nil {
		if errors.Is(err, trackerstore.ErrFileNotFound) {
			return OutcomeError
		}
		logger.ErrorCtx(ctx, "file index: delete_file failed", logger.PeerName(owner), logger.Err(err))
		return OutcomeError
	}
	idx.recordCatalogSize(ctx)
	return OutcomeOK
}

// List authenticates then returns every catalog row owned by owner.
func (idx *Index) List(ctx context.Context, token, owner string) (Outcome, []Entry) {
	if !idx.verify(owner, token) {
		return OutcomeCred, nil
	}
	rows, err := idx.store.FilesOf(ctx, owner)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: files_of failed", logger.PeerName(owner), logger.Err(err))
		return OutcomeError, nil
	}
	if len(rows) == 0 {
		return OutcomeNone, nil
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{FileID: r.FileID, Name: r.Name, Type: r.Type, Path: r.Path, Size: r.Size}
	}
	return OutcomeOK, entries
}

// Search authenticates, fetches every catalog row matching query excluding
// requester's own rows, then filters survivors to owners currently present
// in the Active Peer Table. This liveness filter is the central coupling
// point between the durable catalog and the ephemeral session state.
func (idx *Index) Search(ctx context.Context, token, requester, query string) (Outcome, []SearchHit) {
	if !idx.verify(requester, token) {
		return OutcomeCred, nil
	}
	rows, err := idx.store.SearchFiles(ctx, requester, query)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: search_files failed", logger.PeerName(requester), logger.Err(err))
		return OutcomeError, nil
	}

	var hits []SearchHit
	for _, r := range rows {
		if !idx.sessions.Table().IsActive(r.OwnerName) {
			continue
		}
		hits = append(hits, SearchHit{FileID: r.FileID, Name: r.Name, Type: r.Type, Size: r.Size})
	}
	if len(hits) == 0 {
		return OutcomeNone, nil
	}
	return OutcomeOK, hits
}

// HostLookup authenticates, fetches every (owner, ip, port, path) row for
// fileID excluding requester's own rows, then applies the same active-peer
// liveness filter as Search.
func (idx *Index) HostLookup(ctx context.Context, token, requester string, fileID uint64) (Outcome, []Host) {
	if !idx.verify(requester, token) {
		return OutcomeCred, nil
	}
	rows, err := idx.store.HostsOf(ctx, fileID, requester)
	if err != nil {
		logger.ErrorCtx(ctx, "file index: hosts_of failed", logger.PeerName(requester), logger.Err(err))
		return OutcomeError, nil
	}

	var hosts []Host
	for _, r := range rows {
		if !idx.sessions.Table().IsActive(r.OwnerName) {
			continue
		}
		hosts = append(hosts, Host{IP: r.IP, Port: r.Port, Path: r.Path})
	}
	if len(hosts) == 0 {
		return OutcomeNone, nil
	}
	return OutcomeOK, hosts
}

// pickFileID chooses a random file_id in [0, fileIDSpace), retrying against
// the store's file_id_in_use check. It makes at most maxFileIDAttempts tries
// and returns an error if every candidate was in use.
func (idx *Index) pickFileID(ctx context.Context) (uint64, error) {
	for attempt := 0; attempt < maxFileIDAttempts; attempt++ {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("pick file id: %w", err)
		}
		candidate := binary.BigEndian.Uint64(buf[:]) % fileIDSpace

		inUse, err := idx.store.FileIDInUse(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if !inUse {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("pick file id: exhausted %d attempts without a free id", maxFileIDAttempts)
}
