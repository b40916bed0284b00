package coinbase

// Status is the lifecycle state reported for a transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"

	StatusPending             Status = "pending"
	StatusWaitingForClearing  Status = "waiting_for_clearing"
	StatusWaitingForSignature Status = "waiting_for_signature"
)

// Accepted reports whether transactions in this status are emitted. Anything
// outside the accepted set is dropped, including statuses this package has
// never seen.
func (s Status) Accepted() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Known reports whether the status belongs to the documented enumeration.
// Unknown statuses are still rejected, but flagged louder so upstream drift
// does not go unnoticed.
func (s Status) Known() bool {
	if s.Accepted() {
		return true
	}
	switch s {
	case StatusPending, StatusWaitingForClearing, StatusWaitingForSignature:
		return true
	}
	return false
}
