package store

// EventKind names the rewrite primitive that produced an event.
type EventKind string

const (
	EventErase   EventKind = "erase"
	EventReplace EventKind = "replace"
)

// OpRecord identifies an operation in the journal by kind name and
// content fingerprint. The operation itself is never stored.
type OpRecord struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

// Session groups the events of one rewriting run.
type Session struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Seq   int64  `json:"seq"`
}

// Event is one journal row.
//
// Index is the position the erased or replaced operation held in its block
// before the rewrite. NewOps is empty for erase events and for replacements
// that deleted the operation outright.
type Event struct {
	SessionID string
	Seq       int64
	Kind      EventKind
	Op        OpRecord
	Index     int
	NewOps    []OpRecord
	Unsafe    bool
}
