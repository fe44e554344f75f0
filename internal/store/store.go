// Package store is the durable key-collection layer: whole collections are
// read and written atomically as JSON documents. Callers that do a
// read-modify-write cycle must hold the collection lock for the whole span.
package store

// Collection names.
const (
	Users         = "users"
	Devices       = "devices"
	Tickets       = "tickets"
	Notifications = "notifications"
	AuditLogs     = "audit_logs"
)

type Store interface {
	// Read decodes the named collection into out ([]T). A collection that
	// has never been written decodes as an empty list.
	Read(collection string, out any) error
	// Write replaces the named collection. All-or-nothing: a failed write
	// leaves the previous contents intact.
	Write(collection string, data any) error
	// Lock acquires the collection's mutex and returns the unlock func:
	//
	//	defer s.Lock(store.Tickets)()
	Lock(collection string) func()
}
