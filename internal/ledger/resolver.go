package ledger

import "context"

// Resolver answers derived-state questions by scanning the record sequence.
// It is read-only and recomputes everything per call: the store returns the
// full set anyway, so there is nothing worth caching, and a fresh scan is what
// keeps the Writer's invariant checks honest.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ActiveAssist returns the actor's unmatched ACTIVE assist start, or nil when
// no session is in progress.
func (r *Resolver) ActiveAssist(ctx context.Context, actorID string) (*Record, error) {
	recs, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return ActiveAssistIn(recs, actorID), nil
}

// HasAttendance reports whether an ACTIVE attendance record exists for the
// actor, date and session label.
func (r *Resolver) HasAttendance(ctx context.Context, actorID, date string, session Session) (bool, error) {
	recs, err := r.store.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	return HasAttendanceIn(recs, actorID, date, session), nil
}

// ActiveAssistIn scans records for the actor's unmatched ACTIVE assist start.
// Ends may appear anywhere after their start, not necessarily adjacent, so the
// set of referenced start ids is collected up front and the newest unreferenced
// start wins.
func ActiveAssistIn(recs []Record, actorID string) *Record {
	ended := make(map[string]struct{})
	for i := range recs {
		if recs[i].Kind == KindAssistEnd && recs[i].RefRecordID != "" {
			ended[recs[i].RefRecordID] = struct{}{}
		}
	}

	for i := len(recs) - 1; i >= 0; i-- {
		rec := &recs[i]
		if rec.Kind != KindAssistStart || rec.ActorID != actorID || rec.Status != StatusActive {
			continue
		}
		if _, ok := ended[rec.RecordID]; ok {
			continue
		}
		out := *rec
		return &out
	}
	return nil
}

// HasAttendanceIn is the attendance dedup scan; it short-circuits on the first
// ACTIVE match for (actor, date, session).
func HasAttendanceIn(recs []Record, actorID, date string, session Session) bool {
	for i := range recs {
		rec := &recs[i]
		if rec.Kind == KindAttendance &&
			rec.ActorID == actorID &&
			rec.Date == date &&
			rec.Session == session &&
			rec.Status == StatusActive {
			return true
		}
	}
	return false
}
