package synclog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSessionLifecycle_Complete(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	id, err := l.Start(ctx, "reconcile")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, l.Complete(ctx, id, 40, 182))

	sessions, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "reconcile", s.Kind)
	assert.Equal(t, "complete", s.Status)
	assert.Equal(t, int64(40), s.PagesScanned)
	assert.Equal(t, int64(182), s.IDsResolved)
	assert.NotNil(t, s.CompletedAt)
	assert.Empty(t, s.Error)
}

func TestSessionLifecycle_Fail(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	id, err := l.Start(ctx, "reconcile")
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, "network down"))

	sessions, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "failed", sessions[0].Status)
	assert.Equal(t, "network down", sessions[0].Error)
}

func TestList_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	first, err := l.Start(ctx, "reconcile")
	require.NoError(t, err)
	second, err := l.Start(ctx, "merge")
	require.NoError(t, err)

	sessions, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Same-timestamp ordering is not guaranteed, but both must be present.
	ids := []string{sessions[0].ID, sessions[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
}

func TestOpen_Reopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	l, err := Open(path)
	require.NoError(t, err)
	id, err := l.Start(ctx, "reconcile")
	require.NoError(t, err)
	require.NoError(t, l.Complete(ctx, id, 1, 1))
	require.NoError(t, l.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	sessions, err := l2.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
