package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type EventKind string

const (
	KindClockIn    EventKind = "clock_in"
	KindClockOut   EventKind = "clock_out"
	KindCorrection EventKind = "correction"
)

// TimeEvent is one entry in an employee's append-only event chain. The
// timestamp, hash and previous hash never change after insert; the only
// permitted mutation is flipping IsSuperseded/SupersededByID when a later
// correction replaces the event.
type TimeEvent struct {
	ID              string
	EmployeeID      string
	Kind            EventKind
	Timestamp       time.Time
	Hash            string
	PreviousHash    *string
	CreatedBy       string
	IPAddress       *string
	DeviceInfo      *string
	Notes           *string
	ReplacesEventID *string
	IsSuperseded    bool
	SupersededByID  *string
	CreatedAt       time.Time
}

// EventMeta carries the audit fields recorded alongside an appended event.
type EventMeta struct {
	CreatedBy       string
	IPAddress       *string
	DeviceInfo      *string
	Notes           *string
	ReplacesEventID *string
}

// ComputeEventHash derives the chain hash for an event. The previous hash is
// the hash of the most recent event for the employee by creation order, or
// the empty string for the first event in the chain.
func ComputeEventHash(employeeID string, kind EventKind, timestamp time.Time, previousHash *string) string {
	prev := ""
	if previousHash != nil {
		prev = *previousHash
	}
	payload := employeeID + "|" + string(kind) + "|" + timestamp.UTC().Format(time.RFC3339Nano) + "|" + prev
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ChainReport is the outcome of a full chain verification walk.
type ChainReport struct {
	Intact          bool
	Length          int
	BrokenAtEventID *string
}
