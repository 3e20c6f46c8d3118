package ledger

import "context"

// GenesisHash is the well-known previous_hash of the first record in the chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Kind identifies the event type a record captures.
type Kind string

const (
	KindAttendance  Kind = "ATTENDANCE"
	KindAssistStart Kind = "ASSIST_START"
	KindAssistEnd   Kind = "ASSIST_END"

	// KindCorrection is reserved for future correction flows. No current flow
	// writes it; the Verifier and Resolver still handle it.
	KindCorrection Kind = "CORRECTION"
)

// Status is the logical lifecycle state of a record. Records are never
// physically removed — a later correction marks them VOIDED instead.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusVoided Status = "VOIDED"
)

// Session labels the two daily attendance windows.
type Session string

const (
	SessionMorning   Session = "MORNING"
	SessionAfternoon Session = "AFTERNOON"
)

// Locations an assist session can be tagged with.
var Locations = []string{"Counter", "Office Program", "Outreach Program", "Other"}

// Categories an assist session can be tagged with. CategoryRegistration
// additionally requires a subcategory.
var Categories = []string{CategoryRegistration, "Inquiry", "Other"}

// CategoryRegistration is the category that mandates a subcategory.
const CategoryRegistration = "Registration"

// Record is one immutable ledger entry. All time fields are kept as the exact
// strings written at creation (RFC3339Nano for timestamps, YYYY-MM-DD for the
// date) so that storage round-trips can never perturb the hash.
type Record struct {
	RecordID    string  `json:"record_id"`
	ServerTS    string  `json:"server_timestamp"`
	Kind        Kind    `json:"kind"`
	Date        string  `json:"date"`
	Session     Session `json:"session_label,omitempty"`
	ActorID     string  `json:"actor_id"`
	ActorName   string  `json:"actor_name"`
	ActorGrade  string  `json:"actor_grade"`
	Note        string  `json:"note,omitempty"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	DurationMin int     `json:"duration_minutes,omitempty"`
	PrevHash    string  `json:"previous_hash"`
	Hash        string  `json:"hash"`
	Status      Status  `json:"status"`
	RefRecordID string  `json:"ref_record_id,omitempty"`
	Location    string  `json:"location,omitempty"`
	Category    string  `json:"category,omitempty"`
	Subcategory string  `json:"subcategory,omitempty"`
}

// Actor is the denormalized snapshot of the acting party copied into every
// record at creation time. Later directory edits must not rewrite history, so
// these fields are duplicated on purpose.
type Actor struct {
	ID    string `json:"actor_id"`
	Name  string `json:"actor_name"`
	Grade string `json:"actor_grade"`
}

// Store is the backing record store consumed by the Writer, Resolver and
// Verifier. Implementations provide only a full ordered read and a single-row
// append: no transactions, no row locks, no compare-and-swap. Append failures
// are infrastructure errors and safe to retry at the application layer — a
// failed append never became part of the chain.
//
// Chain correctness requires that all appends for one deployment go through a
// single Writer instance. Horizontal scaling needs an external serialisation
// point (single-writer lease or one designated instance).
type Store interface {
	// ReadAll returns every record in arrival order.
	ReadAll(ctx context.Context) ([]Record, error)

	// Append durably adds one record after all existing ones.
	Append(ctx context.Context, rec Record) error
}

// Directory resolves an actor id to its current snapshot. Only active members
// are visible; implementations return (nil, nil) when no active actor carries
// the id. The directory is owned by the roster, not by the ledger.
type Directory interface {
	FindActor(ctx context.Context, actorID string) (*Actor, error)
}

// Payload structs define the canonical hash serialization per record kind.
// Field order is the canonical key order; encoding/json preserves it. Every
// field that carries business meaning participates, including the lifecycle
// fields: status drives voiding and ref_record_id drives session matching, so
// a digest that skipped them would leave exactly those editable.

type attendancePayload struct {
	Kind       Kind    `json:"kind"`
	Date       string  `json:"date"`
	Session    Session `json:"session_label"`
	ActorID    string  `json:"actor_id"`
	ActorName  string  `json:"actor_name"`
	ActorGrade string  `json:"actor_grade"`
	Status     Status  `json:"status"`
}

type assistStartPayload struct {
	Kind        Kind   `json:"kind"`
	Date        string `json:"date"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	ActorGrade  string `json:"actor_grade"`
	Note        string `json:"note"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	StartTime   string `json:"start_time"`
	Status      Status `json:"status"`
}

type assistEndPayload struct {
	Kind        Kind   `json:"kind"`
	Date        string `json:"date"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	ActorGrade  string `json:"actor_grade"`
	Note        string `json:"note"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationMin int    `json:"duration_minutes"`
	RefRecordID string `json:"ref_record_id"`
	Status      Status `json:"status"`
}

// genericPayload covers reserved kinds (CORRECTION) and anything unknown:
// every business field participates so the hash still binds the full content.
type genericPayload struct {
	Kind        Kind    `json:"kind"`
	Date        string  `json:"date"`
	Session     Session `json:"session_label"`
	ActorID     string  `json:"actor_id"`
	ActorName   string  `json:"actor_name"`
	ActorGrade  string  `json:"actor_grade"`
	Note        string  `json:"note"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	DurationMin int     `json:"duration_minutes"`
	RefRecordID string  `json:"ref_record_id"`
	Status      Status  `json:"status"`
}

// payloadOf rebuilds the canonical hash payload from a record's stored fields.
func payloadOf(r *Record) any {
	switch r.Kind {
	case KindAttendance:
		return attendancePayload{
			Kind:       r.Kind,
			Date:       r.Date,
			Session:    r.Session,
			ActorID:    r.ActorID,
			ActorName:  r.ActorName,
			ActorGrade: r.ActorGrade,
			Status:     r.Status,
		}
	case KindAssistStart:
		return assistStartPayload{
			Kind:        r.Kind,
			Date:        r.Date,
			ActorID:     r.ActorID,
			ActorName:   r.ActorName,
			ActorGrade:  r.ActorGrade,
			Note:        r.Note,
			Location:    r.Location,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			StartTime:   r.StartTime,
			Status:      r.Status,
		}
	case KindAssistEnd:
		return assistEndPayload{
			Kind:        r.Kind,
			Date:        r.Date,
			ActorID:     r.ActorID,
			ActorName:   r.ActorName,
			ActorGrade:  r.ActorGrade,
			Note:        r.Note,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			DurationMin: r.DurationMin,
			RefRecordID: r.RefRecordID,
			Status:      r.Status,
		}
	default:
		return genericPayload{
			Kind:        r.Kind,
			Date:        r.Date,
			Session:     r.Session,
			ActorID:     r.ActorID,
			ActorName:   r.ActorName,
			ActorGrade:  r.ActorGrade,
			Note:        r.Note,
			Location:    r.Location,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			DurationMin: r.DurationMin,
			RefRecordID: r.RefRecordID,
			Status:      r.Status,
		}
	}
}

// ValidSession reports whether s is one of the known session labels.
func ValidSession(s Session) bool {
	return s == SessionMorning || s == SessionAfternoon
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
