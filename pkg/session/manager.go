package session

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// bcryptCost matches the teacher's choice for interactive login paths: high
// enough to resist offline attack, low enough not to stall a peer's login.
const bcryptCost = bcrypt.DefaultCost

// Manager is the Session Manager: it authenticates peers against
// trackerstore.Store's User table, issues and rotates opaque tokens, and
// gates every other tracker RPC through verifyActive.
type Manager struct {
	store    trackerstore.Store
	table    *Table
	maxUsers int
	ready    bool
}

// NewManager constructs a Manager whose Active Peer Table holds at most
// maxUsers sessions. The Manager is ready only when maxUsers is greater than
// zero; the zero value is not usable (Ready reports false).
func NewManager(store trackerstore.Store, maxUsers int) *Manager {
	return &Manager{
		store:    store,
		table:    NewTable(maxUsers),
		maxUsers: maxUsers,
		ready:    maxUsers > 0,
	}
}

// Ready reports whether the system has been initialized with a configured
// MAX_USERS. Login, Resume, Disconnect and Heartbeat check it first and answer
// NOT_READY when it is false; the File Index operations do not consult it.
func (m *Manager) Ready() bool {
	return m != nil && m.ready
}

// Table exposes the Active Peer Table so the Reaper and File Index can read
// from it.
func (m *Manager) Table() *Table {
	return m.table
}

// LoginResult is the tagged outcome of Login or Resume, carrying the token
// issued or rotated on success.
type LoginResult struct {
	Outcome Outcome
	Token   string
}

// Login authenticates or registers a peer by name and password, per the
// rules in the tracker's session design: unknown names self-register,
// known names must match their stored password, and the active ip/port are
// reconciled against what the storage layer has on file.
func (m *Manager) Login(ctx context.Context, name, password, ip string, port int) (LoginResult, error) {
	if !m.Ready() {
		return LoginResult{Outcome: OutcomeNotReady}, nil
	}
	if !m.table.HasSpace() {
		return LoginResult{Outcome: OutcomeFull}, nil
	}
	if m.table.IsActive(name) {
		return LoginResult{Outcome: OutcomeCopy}, nil
	}

	user, err := m.store.FetchUser(ctx, name)
	switch {
	case errors.Is(err, trackerstore.ErrUserNotFound):
		token, genErr := GenerateToken(m.table)
		if genErr != nil {
			logger.ErrorCtx(ctx, "session login: token generation failed", logger.Err(genErr))
			return LoginResult{Outcome: OutcomeError}, genErr
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if hashErr != nil {
			return LoginResult{Outcome: OutcomeError}, hashErr
		}
		if err := m.store.InsertUser(ctx, name, string(hash), ip, port); err != nil {
			logger.ErrorCtx(ctx, "session login: insert user failed", logger.PeerName(name), logger.Err(err))
			return LoginResult{Outcome: OutcomeError}, err
		}
		if m.table.Add(name, token) != AddOK {
			return LoginResult{Outcome: OutcomeError}, nil
		}
		return LoginResult{Outcome: OutcomeNew, Token: token}, nil

	case err != nil:
		logger.ErrorCtx(ctx, "session login: fetch user failed", logger.PeerName(name), logger.Err(err))
		return LoginResult{Outcome: OutcomeError}, err

	default:
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return LoginResult{Outcome: OutcomePassword}, nil
		}

		changed, err := m.reconcileAddress(ctx, user, ip, port)
		if err != nil {
			return LoginResult{Outcome: OutcomeError}, err
		}

		token, genErr := GenerateToken(m.table)
		if genErr != nil {
			return LoginResult{Outcome: OutcomeError}, genErr
		}
		if m.table.Add(name, token) != AddOK {
			return LoginResult{Outcome: OutcomeError}, nil
		}

		outcome := OutcomeOK
		if changed {
			outcome = OutcomeUpdate
		}
		return LoginResult{Outcome: outcome, Token: token}, nil
	}
}

// Resume re-authenticates a peer whose transport dropped but whose
// server-side session is still live, issuing it a fresh token.
func (m *Manager) Resume(ctx context.Context, token, name, ip string, port int) (LoginResult, error) {
	if !m.Ready() {
		return LoginResult{Outcome: OutcomeNotReady}, nil
	}
	if !m.verifyActive(name, token) {
		return LoginResult{Outcome: OutcomeCred}, nil
	}

	user, err := m.store.FetchUser(ctx, name)
	if err != nil {
		logger.ErrorCtx(ctx, "session resume: fetch user failed", logger.PeerName(name), logger.Err(err))
		return LoginResult{Outcome: OutcomeError}, err
	}

	changed, err := m.reconcileAddress(ctx, user, ip, port)
	if err != nil {
		return LoginResult{Outcome: OutcomeError}, err
	}

	newToken, genErr := GenerateToken(m.table)
	if genErr != nil {
		return LoginResult{Outcome: OutcomeError}, genErr
	}
	if !m.table.Rotate(name, token, newToken) {
		return LoginResult{Outcome: OutcomeCred}, nil
	}

	outcome := OutcomeOK
	if changed {
		outcome = OutcomeUpdate
	}
	return LoginResult{Outcome: outcome, Token: newToken}, nil
}

// Disconnect authenticates then removes the caller's live session.
func (m *Manager) Disconnect(ctx context.Context, token, name string) Outcome {
	if !m.Ready() {
		return OutcomeNotReady
	}
	if !m.verifyActive(name, token) {
		return OutcomeCred
	}
	if !m.table.Remove(name, token) {
		return OutcomeError
	}
	return OutcomeOK
}

// Heartbeat authenticates then refreshes the caller's liveness timestamp.
func (m *Manager) Heartbeat(ctx context.Context, token, name string) Outcome {
	if !m.Ready() {
		return OutcomeNotReady
	}
	if !m.verifyActive(name, token) {
		return OutcomeCred
	}
	m.table.Touch(name)
	return OutcomeOK
}

// verifyActive is the authentication gate every non-login operation runs
// through: the named session must be live and its token must match
// byte-for-byte.
func (m *Manager) verifyActive(name, token string) bool {
	s, ok := m.table.Find(name)
	if !ok {
		return false
	}
	return s.Token == token
}

// reconcileAddress updates the stored ip/port for user if either differs
// from what the caller just presented, reporting whether anything changed.
func (m *Manager) reconcileAddress(ctx context.Context, user *trackerstore.User, ip string, port int) (bool, error) {
	changed := false
	if user.IP != ip {
		if err := m.store.UpdateUserIP(ctx, user.Name, ip); err != nil {
			return false, err
		}
		changed = true
	}
	if user.Port != port {
		if err := m.store.UpdateUserPort(ctx, user.Name, port); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}
