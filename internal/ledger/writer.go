package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WriterConfig carries the tunable business thresholds.
type WriterConfig struct {
	// MinNoteChars is the minimum trimmed length of an assist note.
	MinNoteChars int

	// MinAssistMinutes is the duration below which an ended assist gets a
	// non-fatal warning.
	MinAssistMinutes int

	// SessionCutoverHour: attendance before this UTC hour auto-selects the
	// morning session, at or after it the afternoon session. Records are
	// stamped in UTC, so deployments away from UTC set this to their local
	// noon expressed in UTC.
	SessionCutoverHour int

	// MaxPlausibleMinutes is the duration above which an ended assist is
	// flagged as a clock anomaly. The record is still appended.
	MaxPlausibleMinutes int
}

// DefaultWriterConfig returns the production defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MinNoteChars:        20,
		MinAssistMinutes:    3,
		SessionCutoverHour:  12,
		MaxPlausibleMinutes: 960,
	}
}

// Writer accepts business events and appends exactly one record per accepted
// event, or rejects the event with a typed reason. The read-check-append
// sequence runs under a process-wide mutex: the store has no compare-and-swap,
// so this lock is what prevents two concurrent requests from claiming the same
// predecessor hash. Across processes an external single-writer arrangement is
// required (see Store).
type Writer struct {
	mu     sync.Mutex
	store  Store
	dir    Directory
	engine *HashEngine
	cfg    WriterConfig
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewWriter creates a Writer.
func NewWriter(store Store, dir Directory, engine *HashEngine, cfg WriterConfig, logger *zap.Logger) *Writer {
	return &Writer{
		store:  store,
		dir:    dir,
		engine: engine,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetClock overrides the time source. Test seam.
func (w *Writer) SetClock(now func() time.Time) {
	w.now = now
}

// AttendanceResult is returned by RecordAttendance.
type AttendanceResult struct {
	RecordID string  `json:"record_id"`
	Date     string  `json:"date"`
	Session  Session `json:"session_label"`
}

// AssistStartResult is returned by StartAssist.
type AssistStartResult struct {
	RecordID string `json:"record_id"`
}

// AssistEndResult is returned by EndAssist. Warning is non-empty when the
// session was shorter than the recommended minimum or the duration looks like
// a clock anomaly; the record is appended regardless.
type AssistEndResult struct {
	RecordID    string `json:"record_id"`
	DurationMin int    `json:"duration_minutes"`
	Warning     string `json:"warning,omitempty"`
}

// RecordAttendance appends one ATTENDANCE record. An empty session label is
// auto-selected from the time of day. At most one ACTIVE attendance record may
// exist per actor, date and session label.
func (w *Writer) RecordAttendance(ctx context.Context, actorID string, session Session) (*AttendanceResult, error) {
	actorID = Sanitize(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	// One UTC instant drives the session label, the date and the timestamp;
	// mixing zones here would let a label disagree with the stamped date.
	now := w.now().UTC()
	if session == "" {
		session = w.autoSession(now)
	}
	if !ValidSession(session) {
		return nil, ErrInvalidSession
	}

	actor, err := w.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	ts := now.Format(time.RFC3339Nano)
	date := now.Format("2006-01-02")

	w.mu.Lock()
	defer w.mu.Unlock()

	recs, err := w.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if HasAttendanceIn(recs, actorID, date, session) {
		return nil, ErrDuplicateEvent
	}

	rec := Record{
		RecordID:   w.newID(),
		ServerTS:   ts,
		Kind:       KindAttendance,
		Date:       date,
		Session:    session,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorGrade: actor.Grade,
		Status:     StatusActive,
	}
	if err := w.appendLocked(ctx, &rec, recs); err != nil {
		return nil, err
	}

	w.logger.Info("attendance recorded",
		zap.String("record_id", rec.RecordID),
		zap.String("actor_id", actor.ID),
		zap.String("session", string(session)),
	)
	return &AttendanceResult{RecordID: rec.RecordID, Date: date, Session: session}, nil
}

// StartAssist appends one ASSIST_START record. The actor must not already have
// an unmatched active start; the note, location and category are mandatory,
// and the Registration category additionally requires a subcategory.
func (w *Writer) StartAssist(ctx context.Context, actorID, note, location, category, subcategory string) (*AssistStartResult, error) {
	actorID = Sanitize(actorID)
	note = Sanitize(note)
	location = Sanitize(location)
	category = Sanitize(category)
	subcategory = Sanitize(subcategory)

	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if len([]rune(note)) < w.cfg.MinNoteChars {
		return nil, fmt.Errorf("%w: note must be at least %d characters", ErrInvalidInput, w.cfg.MinNoteChars)
	}
	if !contains(Locations, location) {
		return nil, fmt.Errorf("%w: a location must be selected", ErrInvalidInput)
	}
	if !contains(Categories, category) {
		return nil, fmt.Errorf("%w: a category must be selected", ErrInvalidInput)
	}
	if category == CategoryRegistration && subcategory == "" {
		return nil, fmt.Errorf("%w: a subcategory is required for %s", ErrInvalidInput, CategoryRegistration)
	}

	actor, err := w.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	ts := now.Format(time.RFC3339Nano)

	w.mu.Lock()
	defer w.mu.Unlock()

	recs, err := w.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if ActiveAssistIn(recs, actorID) != nil {
		return nil, ErrConflictingActiveSession
	}

	rec := Record{
		RecordID:    w.newID(),
		ServerTS:    ts,
		Kind:        KindAssistStart,
		Date:        now.Format("2006-01-02"),
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorGrade:  actor.Grade,
		Note:        note,
		StartTime:   ts,
		Status:      StatusActive,
		Location:    location,
		Category:    category,
		Subcategory: subcategory,
	}
	if err := w.appendLocked(ctx, &rec, recs); err != nil {
		return nil, err
	}

	w.logger.Info("assist started",
		zap.String("record_id", rec.RecordID),
		zap.String("actor_id", actor.ID),
		zap.String("category", category),
	)
	return &AssistStartResult{RecordID: rec.RecordID}, nil
}

// EndAssist appends one ASSIST_END record closing the actor's active start.
// Implausible or too-short durations are appended anyway and surfaced as a
// warning: the integrity of the append wins over strict validation.
func (w *Writer) EndAssist(ctx context.Context, actorID string) (*AssistEndResult, error) {
	actorID = Sanitize(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	actor, err := w.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	recs, err := w.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	start := ActiveAssistIn(recs, actorID)
	if start == nil {
		return nil, ErrNoActiveSession
	}

	now := w.now().UTC()
	ts := now.Format(time.RFC3339Nano)
	date := now.Format("2006-01-02")

	durationMin, warning := w.closeDuration(start, now, date)

	rec := Record{
		RecordID:    w.newID(),
		ServerTS:    ts,
		Kind:        KindAssistEnd,
		Date:        date,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorGrade:  actor.Grade,
		Note:        start.Note,
		StartTime:   start.StartTime,
		EndTime:     ts,
		DurationMin: durationMin,
		Status:      StatusActive,
		RefRecordID: start.RecordID,
	}
	if err := w.appendLocked(ctx, &rec, recs); err != nil {
		return nil, err
	}

	if warning != "" {
		w.logger.Warn("assist ended with warning",
			zap.String("record_id", rec.RecordID),
			zap.String("actor_id", actor.ID),
			zap.Int("duration_min", durationMin),
			zap.String("warning", warning),
		)
	} else {
		w.logger.Info("assist ended",
			zap.String("record_id", rec.RecordID),
			zap.String("actor_id", actor.ID),
			zap.Int("duration_min", durationMin),
		)
	}
	return &AssistEndResult{RecordID: rec.RecordID, DurationMin: durationMin, Warning: warning}, nil
}

// appendLocked links rec to the current chain tail and appends it. Caller
// holds w.mu; recs is the fresh read the invariant check ran on.
func (w *Writer) appendLocked(ctx context.Context, rec *Record, recs []Record) error {
	prev := GenesisHash
	if len(recs) > 0 {
		prev = recs[len(recs)-1].Hash
	}
	rec.PrevHash = prev

	hash, err := w.engine.RecordHash(rec, prev)
	if err != nil {
		return fmt.Errorf("compute hash: %w", err)
	}
	rec.Hash = hash

	if err := w.store.Append(ctx, *rec); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// closeDuration computes the rounded minute duration for an ended assist and
// the warning to attach, if any.
func (w *Writer) closeDuration(start *Record, now time.Time, endDate string) (int, string) {
	st, err := time.Parse(time.RFC3339Nano, start.StartTime)
	if err != nil {
		return 0, "start time of the open session is unreadable; duration recorded as 0 minutes"
	}

	durationMin := int(math.Round(now.Sub(st).Minutes()))

	switch {
	case durationMin < 0, durationMin > w.cfg.MaxPlausibleMinutes:
		return durationMin, fmt.Sprintf("recorded duration of %d minutes looks like a clock anomaly; please report it for correction", durationMin)
	case start.Date != endDate:
		return durationMin, "session crossed midnight; the recorded duration may need manual review"
	case durationMin < w.cfg.MinAssistMinutes:
		return durationMin, fmt.Sprintf("session lasted %d minutes, below the recommended minimum of %d", durationMin, w.cfg.MinAssistMinutes)
	}
	return durationMin, ""
}

func (w *Writer) autoSession(now time.Time) Session {
	if now.Hour() < w.cfg.SessionCutoverHour {
		return SessionMorning
	}
	return SessionAfternoon
}

func (w *Writer) findActor(ctx context.Context, actorID string) (*Actor, error) {
	actor, err := w.dir.FindActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("look up actor: %w", err)
	}
	if actor == nil {
		return nil, ErrActorNotFound
	}
	return actor, nil
}

// Sanitize normalises free-text input: trims, collapses runs of whitespace and
// strips angle brackets.
func Sanitize(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
