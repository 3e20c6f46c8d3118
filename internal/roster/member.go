// Package roster is the read-only directory of members who may write to the
// ledger. The ledger only ever sees a snapshot (id, name, grade) of a member;
// PIN hashes and activity status stay inside this package.
package roster

import "errors"

// ErrNotFound is returned when no active member carries the requested id.
var ErrNotFound = errors.New("member not found")

// Status of a member in the directory. Inactive members cannot record events
// but their historical records keep the snapshot taken at write time.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Member is one directory entry.
type Member struct {
	ID      string `json:"member_id"`
	Name    string `json:"name"`
	Grade   string `json:"grade"`
	PINHash string `json:"-"`
	Status  Status `json:"status"`
}
