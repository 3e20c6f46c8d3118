package stats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counterworks/counterlog/internal/ledger"
	"github.com/counterworks/counterlog/internal/roster"
	"github.com/counterworks/counterlog/internal/stats"
	"github.com/counterworks/counterlog/internal/store"
)

func TestPerMember(t *testing.T) {
	ctx := context.Background()

	recordStore := store.NewMemory()
	records := []ledger.Record{
		{RecordID: "a1", Kind: ledger.KindAttendance, ActorID: "M001", Status: ledger.StatusActive},
		{RecordID: "a2", Kind: ledger.KindAttendance, ActorID: "M001", Status: ledger.StatusActive},
		{RecordID: "s1", Kind: ledger.KindAssistStart, ActorID: "M001", Status: ledger.StatusActive},
		{RecordID: "e1", Kind: ledger.KindAssistEnd, ActorID: "M001", RefRecordID: "s1", DurationMin: 25, Status: ledger.StatusActive},
		{RecordID: "s2", Kind: ledger.KindAssistStart, ActorID: "M001", Status: ledger.StatusActive},
		{RecordID: "e2", Kind: ledger.KindAssistEnd, ActorID: "M001", RefRecordID: "s2", DurationMin: 10, Status: ledger.StatusActive},
		{RecordID: "a3", Kind: ledger.KindAttendance, ActorID: "M002", Status: ledger.StatusActive},
		// Voided records and records from departed members are ignored.
		{RecordID: "a4", Kind: ledger.KindAttendance, ActorID: "M002", Status: ledger.StatusVoided},
		{RecordID: "a5", Kind: ledger.KindAttendance, ActorID: "M999", Status: ledger.StatusActive},
		// An open assist start does not count as an assist yet.
		{RecordID: "s3", Kind: ledger.KindAssistStart, ActorID: "M002", Status: ledger.StatusActive},
	}
	for _, rec := range records {
		require.NoError(t, recordStore.Append(ctx, rec))
	}

	dir := roster.NewMemory(
		roster.Member{ID: "M001", Name: "Aisyah Rahman", Grade: "G41", Status: roster.StatusActive},
		roster.Member{ID: "M002", Name: "Daniel Wong", Grade: "G29", Status: roster.StatusActive},
		roster.Member{ID: "M003", Name: "Priya Nair", Grade: "G41", Status: roster.StatusActive},
	)

	totals, err := stats.New(recordStore, dir).PerMember(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	// Sorted by name.
	assert.Equal(t, "Aisyah Rahman", totals[0].Name)
	assert.Equal(t, 2, totals[0].Attendance)
	assert.Equal(t, 2, totals[0].Assists)
	assert.Equal(t, 35, totals[0].AssistMinutes)

	assert.Equal(t, "Daniel Wong", totals[1].Name)
	assert.Equal(t, 1, totals[1].Attendance)
	assert.Equal(t, 0, totals[1].Assists)
	assert.Equal(t, 0, totals[1].AssistMinutes)

	// Members with no records still get a zero row.
	assert.Equal(t, "Priya Nair", totals[2].Name)
	assert.Equal(t, 0, totals[2].Attendance)
}

func TestPerMemberEmpty(t *testing.T) {
	totals, err := stats.New(store.NewMemory(), roster.NewMemory()).PerMember(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
}
