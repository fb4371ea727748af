package rpc

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/fileindex"
	"github.com/nilsio/trackerd/pkg/metrics"
	"github.com/nilsio/trackerd/pkg/session"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// Server wires the Session Manager and File Index to the tracker RPC
// surface described in the wire contract table.
type Server struct {
	sessions *session.Manager
	index    *fileindex.Index
	store    trackerstore.Store
	metrics  metrics.TrackerMetrics
}

// NewServer constructs a Server. m may be nil, in which case RPC calls are
// not recorded.
func NewServer(sessions *session.Manager, index *fileindex.Index, store trackerstore.Store, m metrics.TrackerMetrics) *Server {
	return &Server{sessions: sessions, index: index, store: store, metrics: m}
}

// recordRPC records an RPC call's outcome and latency if metrics are enabled.
func (s *Server) recordRPC(operation, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRPC(operation, outcome, time.Since(start))
}

// decodeRequest reads and validates a JSON request body. On any error it
// writes the ERROR response itself and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeArray(w, "ERROR", "malformed request body")
		return false
	}
	if err := validateRequest(dst); err != nil {
		writeArray(w, "ERROR", err.Error())
		return false
	}
	return true
}

// ConnectToServer handles POST /rpc/connectToServer.
func (s *Server) ConnectToServer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req connectRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := s.sessions.Login(r.Context(), req.Name, req.Password, req.IP, req.Port)
	if err != nil {
		logger.ErrorCtx(r.Context(), "rpc: connectToServer failed", logger.PeerName(req.Name), logger.Err(err))
	}
	if s.metrics != nil {
		s.metrics.RecordLogin(string(result.Outcome), time.Since(start))
	}
	s.recordRPC("connectToServer", string(result.Outcome), start)
	writeSessionOutcome(w, result)
}

// ResumeSession handles POST /rpc/resumeSession.
func (s *Server) ResumeSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req resumeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := s.sessions.Resume(r.Context(), req.Token, req.Name, req.IP, req.Port)
	if err != nil {
		logger.ErrorCtx(r.Context(), "rpc: resumeSession failed", logger.PeerName(req.Name), logger.Err(err))
	}
	if s.metrics != nil {
		s.metrics.RecordLogin(string(result.Outcome), time.Since(start))
	}
	s.recordRPC("resumeSession", string(result.Outcome), start)
	writeSessionOutcome(w, result)
}

func writeSessionOutcome(w http.ResponseWriter, result session.LoginResult) {
	switch result.Outcome {
	case session.OutcomeNew, session.OutcomeUpdate, session.OutcomeOK:
		writeArray(w, string(result.Outcome), result.Token)
	case session.OutcomeNotReady:
		writeArray(w, "ERROR", "tracker not ready: max_users not configured")
	default:
		writeArray(w, string(result.Outcome))
	}
}

// DisconnectFromServer handles POST /rpc/disconnectFromServer.
func (s *Server) DisconnectFromServer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req tokenNameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome := s.sessions.Disconnect(r.Context(), req.Token, req.Name)
	s.recordRPC("disconnectFromServer", string(outcome), start)
	writeSimpleOutcome(w, string(outcome), "disconnected")
}

// SendHeartBeat handles POST /rpc/sendHeartBeat.
func (s *Server) SendHeartBeat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req tokenNameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome := s.sessions.Heartbeat(r.Context(), req.Token, req.Name)
	s.recordRPC("sendHeartBeat", string(outcome), start)
	writeSimpleOutcome(w, string(outcome), "alive")
}

func writeSimpleOutcome(w http.ResponseWriter, tag, okMessage string) {
	if tag == "OK" {
		writeArray(w, tag, okMessage)
		return
	}
	if tag == string(session.OutcomeNotReady) {
		writeArray(w, "ERROR", "tracker not ready: max_users not configured")
		return
	}
	writeArray(w, tag)
}

// RegisterFile handles POST /rpc/registerFile.
func (s *Server) RegisterFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req registerFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome := s.index.Register(r.Context(), req.Token, req.Name, req.FileName, req.FileType, req.FilePath, req.FileSize)
	s.recordRPC("registerFile", string(outcome), start)
	writeSimpleOutcome(w, string(outcome), "registered")
}

// DeregisterFile handles POST /rpc/deregisterFile.
func (s *Server) DeregisterFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req deregisterFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome := s.index.Deregister(r.Context(), req.Token, req.Name, req.FileName, req.FileType, req.FilePath)
	s.recordRPC("deregisterFile", string(outcome), start)
	writeSimpleOutcome(w, string(outcome), "deregistered")
}

// GetUserFiles handles POST /rpc/getUserFiles.
func (s *Server) GetUserFiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req tokenNameRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome, entries := s.index.List(r.Context(), req.Token, req.Name)
	s.recordRPC("getUserFiles", string(outcome), start)
	if outcome != fileindex.OutcomeOK {
		writeArray(w, string(outcome))
		return
	}
	fields := make([]string, 0, len(entries)*5)
	for _, e := range entries {
		fields = append(fields,
			strconv.FormatUint(e.FileID, 10),
			e.Name,
			e.Type,
			e.Path,
			strconv.FormatInt(e.Size, 10),
		)
	}
	writeArray(w, "OK", fields...)
}

// SearchFile handles POST /rpc/searchFile.
func (s *Server) SearchFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req searchFileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome, hits := s.index.Search(r.Context(), req.Token, req.Name, req.Query)
	s.recordRPC("searchFile", string(outcome), start)
	if outcome != fileindex.OutcomeOK {
		writeArray(w, string(outcome))
		return
	}
	fields := make([]string, 0, len(hits)*4)
	for _, h := range hits {
		fields = append(fields,
			strconv.FormatUint(h.FileID, 10),
			h.Name,
			h.Type,
			strconv.FormatInt(h.Size, 10),
		)
	}
	writeArray(w, "OK", fields...)
}

// GetFileHostInfo handles POST /rpc/getFileHostInfo.
func (s *Server) GetFileHostInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req hostInfoRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	outcome, hosts := s.index.HostLookup(r.Context(), req.Token, req.Name, req.FileID)
	s.recordRPC("getFileHostInfo", string(outcome), start)
	if outcome != fileindex.OutcomeOK {
		writeArray(w, string(outcome))
		return
	}
	fields := make([]string, 0, len(hosts)*3)
	for _, h := range hosts {
		fields = append(fields,
			h.IP,
			strconv.Itoa(h.Port),
			h.Path,
		)
	}
	writeArray(w, "OK", fields...)
}
