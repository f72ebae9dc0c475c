package recorder

import "time"

// DispatchStatus values stored with each dispatch record.
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// DispatchEvent records one scheduled delivery attempt.
type DispatchEvent struct {
	RunID        string
	SubscriberID string
	Slot         string // local "2006-01-02 15:04"
	Reports      []string
	Status       string
	Error        string
	Bytes        int
	At           time.Time
}

// RefreshEvent records one hourly snapshot refresh.
type RefreshEvent struct {
	OK      bool
	Symbols int
	Error   string
	At      time.Time
}

// Recorder is the dispatch ledger. ClaimDispatch is the at-most-once gate:
// it returns true exactly once per (subscriber, slot).
type Recorder interface {
	ClaimDispatch(subscriberID, slot string) (bool, error)
	RecordDispatch(evt *DispatchEvent) error
	RecordRefresh(evt *RefreshEvent) error
	Close() error
}
