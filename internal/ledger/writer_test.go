package ledger_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/ledger"
	"github.com/counterworks/counterlog/internal/roster"
	"github.com/counterworks/counterlog/internal/store"
)

const validNote = "Helped with account registration forms"

// testClock is a settable time source for the writer.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWriter(t *testing.T) (*ledger.Writer, *store.Memory, *testClock) {
	t.Helper()

	recordStore := store.NewMemory()
	dir := roster.NewMemory(
		roster.Member{ID: "M001", Name: "Aisyah Rahman", Grade: "G41", Status: roster.StatusActive},
		roster.Member{ID: "M002", Name: "Daniel Wong", Grade: "G29", Status: roster.StatusActive},
		roster.Member{ID: "M009", Name: "Gone Person", Grade: "G10", Status: roster.StatusInactive},
	)
	engine := ledger.NewHashEngine("test-salt")
	w := ledger.NewWriter(recordStore, dir, engine, ledger.DefaultWriterConfig(), zap.NewNop())

	clock := &testClock{t: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}
	w.SetClock(clock.Now)
	return w, recordStore, clock
}

func TestRecordAttendance(t *testing.T) {
	w, recordStore, _ := newTestWriter(t)
	ctx := context.Background()

	res, err := w.RecordAttendance(ctx, "M001", ledger.SessionMorning)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RecordID)
	assert.Equal(t, "2026-08-31", res.Date)
	assert.Equal(t, ledger.SessionMorning, res.Session)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, ledger.KindAttendance, rec.Kind)
	assert.Equal(t, "M001", rec.ActorID)
	assert.Equal(t, "Aisyah Rahman", rec.ActorName)
	assert.Equal(t, "G41", rec.ActorGrade)
	assert.Equal(t, ledger.StatusActive, rec.Status)
	assert.Equal(t, ledger.GenesisHash, rec.PrevHash)
	assert.Len(t, rec.Hash, 64)
}

func TestRecordAttendanceDuplicate(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	_, err := w.RecordAttendance(ctx, "M001", ledger.SessionMorning)
	require.NoError(t, err)

	_, err = w.RecordAttendance(ctx, "M001", ledger.SessionMorning)
	assert.ErrorIs(t, err, ledger.ErrDuplicateEvent)
	assert.True(t, ledger.IsRejection(err))

	// A different session label on the same day is a fresh event.
	_, err = w.RecordAttendance(ctx, "M001", ledger.SessionAfternoon)
	assert.NoError(t, err)

	// So is another actor in the same session.
	_, err = w.RecordAttendance(ctx, "M002", ledger.SessionMorning)
	assert.NoError(t, err)
}

func TestRecordAttendanceAutoSession(t *testing.T) {
	w, recordStore, clock := newTestWriter(t)
	ctx := context.Background()

	clock.t = time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	res, err := w.RecordAttendance(ctx, "M001", "")
	require.NoError(t, err)
	assert.Equal(t, ledger.SessionMorning, res.Session)

	clock.t = time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	res, err = w.RecordAttendance(ctx, "M002", "")
	require.NoError(t, err)
	assert.Equal(t, ledger.SessionAfternoon, res.Session)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ledger.SessionMorning, recs[0].Session)
	assert.Equal(t, ledger.SessionAfternoon, recs[1].Session)
}

func TestRecordAttendanceAutoSessionMatchesStampedDate(t *testing.T) {
	w, recordStore, clock := newTestWriter(t)
	ctx := context.Background()

	// 07:00 at UTC+8 is 23:00 UTC the previous day. The label and the date
	// must come from the same clock, so this is the 30th's afternoon, not the
	// 31st's morning.
	clock.t = time.Date(2026, 8, 31, 7, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))

	res, err := w.RecordAttendance(ctx, "M001", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", res.Date)
	assert.Equal(t, ledger.SessionAfternoon, res.Session)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, strings.HasPrefix(recs[0].ServerTS, "2026-08-30T23:00:00"))
}

func TestRecordAttendanceRejections(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	_, err := w.RecordAttendance(ctx, "NOPE", ledger.SessionMorning)
	assert.ErrorIs(t, err, ledger.ErrActorNotFound)

	// Inactive members are invisible to the directory.
	_, err = w.RecordAttendance(ctx, "M009", ledger.SessionMorning)
	assert.ErrorIs(t, err, ledger.ErrActorNotFound)

	_, err = w.RecordAttendance(ctx, "M001", "EVENING")
	assert.ErrorIs(t, err, ledger.ErrInvalidSession)

	_, err = w.RecordAttendance(ctx, "   ", ledger.SessionMorning)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestStartAssist(t *testing.T) {
	w, recordStore, _ := newTestWriter(t)
	ctx := context.Background()

	res, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.RecordID)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, ledger.KindAssistStart, rec.Kind)
	assert.Equal(t, validNote, rec.Note)
	assert.Equal(t, "Counter", rec.Location)
	assert.Equal(t, "Inquiry", rec.Category)
	assert.Equal(t, rec.ServerTS, rec.StartTime)
}

func TestStartAssistValidation(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	tests := []struct {
		name                                      string
		note, location, category, subcategory     string
	}{
		{"short note", "too short", "Counter", "Inquiry", ""},
		{"whitespace-padded short note", "   a   b   ", "Counter", "Inquiry", ""},
		{"unknown location", validNote, "Cafeteria", "Inquiry", ""},
		{"missing location", validNote, "", "Inquiry", ""},
		{"unknown category", validNote, "Counter", "Complaints", ""},
		{"registration without subcategory", validNote, "Counter", "Registration", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.StartAssist(ctx, "M001", tt.note, tt.location, tt.category, tt.subcategory)
			assert.ErrorIs(t, err, ledger.ErrInvalidInput)
		})
	}

	// Registration with a subcategory is accepted.
	_, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Registration", "New account")
	assert.NoError(t, err)
}

func TestStartAssistConflict(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	_, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
	require.NoError(t, err)

	_, err = w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
	assert.ErrorIs(t, err, ledger.ErrConflictingActiveSession)

	// Another actor is unaffected.
	_, err = w.StartAssist(ctx, "M002", validNote, "Counter", "Inquiry", "")
	assert.NoError(t, err)
}

func TestEndAssist(t *testing.T) {
	w, recordStore, clock := newTestWriter(t)
	ctx := context.Background()

	startRes, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	endRes, err := w.EndAssist(ctx, "M001")
	require.NoError(t, err)
	assert.Equal(t, 5, endRes.DurationMin)
	assert.Empty(t, endRes.Warning)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	end := recs[1]
	assert.Equal(t, ledger.KindAssistEnd, end.Kind)
	assert.Equal(t, startRes.RecordID, end.RefRecordID)
	assert.Equal(t, validNote, end.Note)
	assert.Equal(t, recs[0].StartTime, end.StartTime)
	assert.Equal(t, end.ServerTS, end.EndTime)
	assert.Equal(t, 5, end.DurationMin)

	// Ending again finds nothing open.
	_, err = w.EndAssist(ctx, "M001")
	assert.ErrorIs(t, err, ledger.ErrNoActiveSession)
}

func TestEndAssistNoActiveSession(t *testing.T) {
	w, _, _ := newTestWriter(t)

	_, err := w.EndAssist(context.Background(), "M001")
	assert.ErrorIs(t, err, ledger.ErrNoActiveSession)
}

func TestEndAssistWarnings(t *testing.T) {
	ctx := context.Background()

	t.Run("short session", func(t *testing.T) {
		w, _, clock := newTestWriter(t)
		_, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
		require.NoError(t, err)

		clock.Advance(time.Minute)
		res, err := w.EndAssist(ctx, "M001")
		require.NoError(t, err)
		assert.Equal(t, 1, res.DurationMin)
		assert.NotEmpty(t, res.Warning)
	})

	t.Run("clock anomaly", func(t *testing.T) {
		w, recordStore, clock := newTestWriter(t)
		_, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
		require.NoError(t, err)

		clock.Advance(-10 * time.Minute)
		res, err := w.EndAssist(ctx, "M001")
		require.NoError(t, err)
		assert.Equal(t, -10, res.DurationMin)
		assert.Contains(t, res.Warning, "clock anomaly")

		// The record is appended despite the warning.
		recs, err := recordStore.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("midnight crossing", func(t *testing.T) {
		w, _, clock := newTestWriter(t)
		clock.t = time.Date(2026, 8, 31, 23, 50, 0, 0, time.UTC)
		_, err := w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		res, err := w.EndAssist(ctx, "M001")
		require.NoError(t, err)
		assert.Equal(t, 20, res.DurationMin)
		assert.Contains(t, res.Warning, "midnight")
	})
}

func TestChainLinkage(t *testing.T) {
	w, recordStore, clock := newTestWriter(t)
	ctx := context.Background()

	_, err := w.RecordAttendance(ctx, "M001", ledger.SessionMorning)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = w.StartAssist(ctx, "M001", validNote, "Counter", "Inquiry", "")
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = w.EndAssist(ctx, "M001")
	require.NoError(t, err)

	recs, err := recordStore.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, ledger.GenesisHash, recs[0].PrevHash)
	assert.Equal(t, recs[0].Hash, recs[1].PrevHash)
	assert.Equal(t, recs[1].Hash, recs[2].PrevHash)
	for _, rec := range recs {
		assert.Len(t, rec.Hash, 64)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  M001  ", "M001"},
		{"hello   world", "hello world"},
		{"<script>alert</script>", "scriptalert/script"},
		{"line\none\ttwo", "line one two"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ledger.Sanitize(tt.in), "input %q", tt.in)
	}
}
