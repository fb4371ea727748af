package metrics

import "time"

// TrackerMetrics provides observability for the Session Manager, File
// Index, and Reaper. Pass nil anywhere a TrackerMetrics is accepted to
// disable collection with zero overhead.
type TrackerMetrics interface {
	// SetActiveSessions updates the current size of the Active Peer Table.
	SetActiveSessions(count int)

	// RecordLogin records a completed Login/Resume call and its outcome tag
	// ("NEW", "UPDATE", "OK", "FULL", "COPY", "PASSWORD", "ERROR").
	RecordLogin(outcome string, duration time.Duration)

	// RecordRPC records a completed tracker RPC by operation name and
	// outcome tag.
	RecordRPC(operation string, outcome string, duration time.Duration)

	// SetRegisteredFiles updates the total number of UserFile rows.
	SetRegisteredFiles(count int)

	// RecordReaperSweep records one Reaper pass and how many sessions it evicted.
	RecordReaperSweep(evicted int)
}
