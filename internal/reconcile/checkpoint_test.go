package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.checkpoint.yaml")

	in := Checkpoint{Session: "abc", Page: 40, Indexed: 20000, Resolved: 180, StopReason: "year_floor"}
	require.NoError(t, WriteCheckpoint(path, in))

	out, ok, err := ReadCheckpoint(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Session, out.Session)
	assert.Equal(t, in.Page, out.Page)
	assert.Equal(t, in.Indexed, out.Indexed)
	assert.Equal(t, in.Resolved, out.Resolved)
	assert.Equal(t, in.StopReason, out.StopReason)
	assert.False(t, out.WrittenAt.IsZero())
}

func TestCheckpoint_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.yaml")
	require.NoError(t, WriteCheckpoint(path, Checkpoint{Page: 10}))
	require.NoError(t, WriteCheckpoint(path, Checkpoint{Page: 20}))

	out, ok, err := ReadCheckpoint(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, out.Page)
}

func TestReadCheckpoint_Missing(t *testing.T) {
	_, ok, err := ReadCheckpoint(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadCheckpoint_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml {"), 0o644))

	_, _, err := ReadCheckpoint(path)
	assert.Error(t, err)
}
