package roster_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counterworks/counterlog/internal/roster"
)

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := roster.NewMemory(
		roster.Member{ID: "M001", Name: "Aisyah Rahman", Grade: "G41", Status: roster.StatusActive},
		roster.Member{ID: "M009", Name: "Gone Person", Grade: "G10", Status: roster.StatusInactive},
	)

	mem, err := dir.FindByID(ctx, "M001")
	require.NoError(t, err)
	assert.Equal(t, "Aisyah Rahman", mem.Name)

	_, err = dir.FindByID(ctx, "M009")
	assert.ErrorIs(t, err, roster.ErrNotFound)
	_, err = dir.FindByID(ctx, "NOPE")
	assert.ErrorIs(t, err, roster.ErrNotFound)

	members, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "M001", members[0].ID)

	// Directory lookups surface actors for the ledger; unknown ids yield a nil
	// actor without an error.
	actor, err := dir.FindActor(ctx, "M001")
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Equal(t, "M001", actor.ID)
	assert.Equal(t, "Aisyah Rahman", actor.Name)
	assert.Equal(t, "G41", actor.Grade)

	actor, err = dir.FindActor(ctx, "M009")
	require.NoError(t, err)
	assert.Nil(t, actor)
}

func TestCSVDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "members.csv")
	content := "member_id,name,grade,pin_hash,status\n" +
		"M001,Aisyah Rahman,G41,deadbeef,ACTIVE\n" +
		"M002,Daniel Wong,G29,cafe,\n" +
		"M009,Gone Person,G10,0000,INACTIVE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	dir, err := roster.NewCSV(path)
	require.NoError(t, err)

	members, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// Blank status defaults to active.
	mem, err := dir.FindByID(ctx, "M002")
	require.NoError(t, err)
	assert.Equal(t, "Daniel Wong", mem.Name)
	assert.Equal(t, roster.StatusActive, mem.Status)

	_, err = dir.FindByID(ctx, "M009")
	assert.ErrorIs(t, err, roster.ErrNotFound)

	actor, err := dir.FindActor(ctx, "M001")
	require.NoError(t, err)
	require.NotNil(t, actor)
	assert.Equal(t, "Aisyah Rahman", actor.Name)
}

func TestCSVDirectoryMissingFile(t *testing.T) {
	_, err := roster.NewCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
