package trackerstore

import "context"

// Store is the Persistence Gateway's interface: the small set of relational
// operations the Session Manager and File Index are allowed to issue.
// Neither caller takes a lock around these calls; concurrency is delegated
// to the database. Register races are resolved by the idx_owner_file unique
// index (models.go) rather than application-level locking, and GORMStore's
// own mutex (gorm.go) guards only the cached health-probe result, not query
// execution.
type Store interface {
	// FetchUser returns the User row for name, or ErrUserNotFound.
	FetchUser(ctx context.Context, name string) (*User, error)

	// InsertUser creates a new User row. Returns ErrUserExists if name is taken.
	InsertUser(ctx context.Context, name, passwordHash, ip string, port int) error

	// UpdateUserIP updates the stored IP for an existing user.
	UpdateUserIP(ctx context.Context, name, ip string) error

	// UpdateUserPort updates the stored port for an existing user.
	UpdateUserPort(ctx context.Context, name string, port int) error

	// CountFiles returns how many UserFile rows owner currently has registered.
	CountFiles(ctx context.Context, owner string) (int, error)

	// FileExists reports whether (owner, name, fileType, path) is already registered.
	FileExists(ctx context.Context, owner, name, fileType, path string) (bool, error)

	// InsertFile creates a new UserFile row.
	InsertFile(ctx context.Context, file *UserFile) error

	// DeleteFile removes the UserFile row matching (owner, name, fileType, path).
	// Returns ErrFileNotFound if no such row exists.
	DeleteFile(ctx context.Context, owner, name, fileType, path string) error

	// FilesOf returns every UserFile row owned by owner.
	FilesOf(ctx context.Context, owner string) ([]*UserFile, error)

	// SearchFiles returns every UserFile row not owned by ownerExcluded whose
	// name followed by type contains querySubstring, compared case-insensitively.
	SearchFiles(ctx context.Context, ownerExcluded, querySubstring string) ([]*UserFile, error)

	// HostsOf returns every UserFile row with the given fileID, excluding
	// rows owned by requesterExcluded, joined with the owning User's last
	// known address.
	HostsOf(ctx context.Context, fileID uint64, requesterExcluded string) ([]FileHost, error)

	// FileIDInUse reports whether fileID is already assigned to a row.
	FileIDInUse(ctx context.Context, fileID uint64) (bool, error)

	// TotalFiles returns the total number of UserFile rows across all owners.
	TotalFiles(ctx context.Context) (int, error)

	// Healthcheck verifies the underlying connection is reachable.
	Healthcheck(ctx context.Context) error

	// IsHealthy reports the last outcome observed by the background probe.
	IsHealthy() bool

	// Close releases the underlying connection.
	Close() error
}

// FileHost is a single (owner, ip, port, path) row returned by HostsOf,
// before the File Index applies its active-peer liveness filter.
type FileHost struct {
	OwnerName string
	IP        string
	Port      int
	Path      string
}
