package session

// Outcome is the tagged result every Session Manager operation produces.
// Concrete wire encoding belongs to pkg/rpc; this package only decides which
// tag applies.
type Outcome string

const (
	OutcomeNew      Outcome = "NEW"
	OutcomeUpdate   Outcome = "UPDATE"
	OutcomeOK       Outcome = "OK"
	OutcomeFull     Outcome = "FULL"
	OutcomeCopy     Outcome = "COPY"
	OutcomePassword Outcome = "PASSWORD"
	OutcomeCred     Outcome = "CRED"
	OutcomeError    Outcome = "ERROR"
	OutcomeNotReady Outcome = "NOT_READY"
)
