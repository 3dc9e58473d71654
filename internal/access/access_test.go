package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireGetRelease(t *testing.T) {
	tbl := New[string](4)

	aid, err := tbl.Acquire("first")
	require.NoError(t, err)

	got, ok := tbl.Get(aid)
	require.True(t, ok)
	require.Equal(t, "first", got)

	require.True(t, tbl.Release(aid))
	_, ok = tbl.Get(aid)
	require.False(t, ok)
}

func TestReleaseTwiceFails(t *testing.T) {
	tbl := New[int](2)

	aid, err := tbl.Acquire(42)
	require.NoError(t, err)

	require.True(t, tbl.Release(aid))
	require.False(t, tbl.Release(aid))
}

func TestStaleAIDAfterSlotReuse(t *testing.T) {
	tbl := New[int](1)

	first, err := tbl.Acquire(1)
	require.NoError(t, err)
	require.True(t, tbl.Release(first))

	second, err := tbl.Acquire(2)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, ok := tbl.Get(first)
	require.False(t, ok, "stale AID from a released slot must not alias the reused slot")

	got, ok := tbl.Get(second)
	require.True(t, ok)
	require.Equal(t, 2, got)
}

func TestAcquireTooMany(t *testing.T) {
	tbl := New[int](2)

	_, err := tbl.Acquire(1)
	require.NoError(t, err)
	_, err = tbl.Acquire(2)
	require.NoError(t, err)

	_, err = tbl.Acquire(3)
	require.ErrorIs(t, err, ErrTooMany)
}

func TestUpdate(t *testing.T) {
	tbl := New[int](1)

	aid, err := tbl.Acquire(1)
	require.NoError(t, err)

	require.True(t, tbl.Update(aid, 2))
	got, ok := tbl.Get(aid)
	require.True(t, ok)
	require.Equal(t, 2, got)

	require.True(t, tbl.Release(aid))
	require.False(t, tbl.Update(aid, 3))
}

func TestLen(t *testing.T) {
	tbl := New[int](3)
	require.Equal(t, 0, tbl.Len())

	a, _ := tbl.Acquire(1)
	_, _ = tbl.Acquire(2)
	require.Equal(t, 2, tbl.Len())

	tbl.Release(a)
	require.Equal(t, 1, tbl.Len())
}

func TestFDTable(t *testing.T) {
	tbl := New[int](2)
	aid, err := tbl.Acquire(7)
	require.NoError(t, err)

	fds := NewFDTable()
	fds.Register(3, aid)

	got, ok := fds.Resolve(3)
	require.True(t, ok)
	require.Equal(t, aid, got)

	_, ok = fds.Resolve(99)
	require.False(t, ok)

	require.Equal(t, 1, fds.Len())
	fds.Release(3)
	require.Equal(t, 0, fds.Len())
	_, ok = fds.Resolve(3)
	require.False(t, ok)
}
