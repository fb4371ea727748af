package trackerstore

import "errors"

// Sentinel errors returned by the Persistence Gateway. Callers use errors.Is
// to translate these into the tracker's ERROR/COPY/404 RPC tags.
var (
	// ErrUserNotFound is returned when no User row matches the requested name.
	ErrUserNotFound = errors.New("trackerstore: user not found")

	// ErrUserExists is returned by InsertUser when the name is already taken.
	ErrUserExists = errors.New("trackerstore: user already exists")

	// ErrFileExists is returned when (owner, name, type, path) is already registered.
	ErrFileExists = errors.New("trackerstore: file already registered")

	// ErrFileNotFound is returned when a delete or lookup targets a missing file.
	ErrFileNotFound = errors.New("trackerstore: file not found")

	// ErrStorageUnavailable names the storage-down condition. No GORMStore
	// method returns it: calls made while the connection is down fail with
	// the driver's own error.
	ErrStorageUnavailable = errors.New("trackerstore: storage unavailable")
)
