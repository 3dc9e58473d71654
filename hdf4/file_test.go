package hdf4

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openFresh(t *testing.T) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "container.hdf")
	f, err := Open(path, Create)
	require.NoError(t, err)
	return f, path
}

// TestCreateReadRegularEndToEnd is end-to-end scenario 1: new_element,
// write, close, reopen, start_read, read back the same bytes.
func TestCreateReadRegularEndToEnd(t *testing.T) {
	f, path := openFresh(t)

	aid, err := f.NewElement(1962, 1, 5)
	require.NoError(t, err)
	n, err := f.Write(aid, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, f.EndAccess(aid))
	require.NoError(t, f.Close())

	f2, err := Open(path, ReadOnly)
	require.NoError(t, err)
	defer f2.Close()

	aid2, err := f2.StartRead(1962, 1)
	require.NoError(t, err)
	defer f2.EndAccess(aid2)

	buf := make([]byte, 5)
	n, err = f2.Read(aid2, 5, buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))

	meta, err := f2.Inquire(aid2)
	require.NoError(t, err)
	require.Equal(t, int64(5), meta.Length)
}

func TestNewElementRejectsSpecialTag(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	_, err := f.NewElement(1962|0x8000, 1, 0)
	require.ErrorIs(t, err, ErrArgs)
}

func TestNewElementRejectsDuplicate(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(100, 1, 0)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))

	_, err = f.NewElement(100, 1, 0)
	require.ErrorIs(t, err, ErrCannotModify)
}

func TestStartReadNotFound(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	_, err := f.StartRead(999, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSeekPastEndReadFails is end-to-end scenario 5.
func TestSeekPastEndReadFails(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(1, 1, 100)
	require.NoError(t, err)
	require.NoError(t, f.Seek(aid, 100, SeekStart))

	buf := make([]byte, 1)
	_, err = f.Read(aid, 1, buf)
	require.ErrorIs(t, err, ErrRange)
	require.NoError(t, f.EndAccess(aid))
}

func TestWriteZeroDoesNotExtendLength(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(1, 1, 10)
	require.NoError(t, err)
	n, err := f.Write(aid, nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	meta, err := f.Inquire(aid)
	require.NoError(t, err)
	require.Equal(t, int64(10), meta.Length)
	require.NoError(t, f.EndAccess(aid))
}

// TestRegularElementGrowthOnAppend exercises growRegular, writing past
// the element's preallocated length.
func TestRegularElementGrowthOnAppend(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(5, 1, 4)
	require.NoError(t, err)
	_, err = f.Write(aid, []byte("abcd"))
	require.NoError(t, err)

	_, err = f.Write(aid, []byte("efgh"))
	require.NoError(t, err)

	meta, err := f.Inquire(aid)
	require.NoError(t, err)
	require.Equal(t, int64(8), meta.Length)
	require.NoError(t, f.EndAccess(aid))

	aid2, err := f.StartRead(5, 1)
	require.NoError(t, err)
	buf := make([]byte, 8)
	_, err = f.Read(aid2, 8, buf)
	require.NoError(t, err)
	require.Equal(t, "abcdefgh", string(buf))
	require.NoError(t, f.EndAccess(aid2))
}

// TestDeleteFreesIndexEntry verifies a deleted (tag, ref) is no longer
// resolvable and its slot can be reclaimed by a subsequent create.
func TestDeleteFreesIndexEntry(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(42, 1, 3)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))

	require.NoError(t, f.Delete(42, 1))
	_, err = f.StartRead(42, 1)
	require.ErrorIs(t, err, ErrNotFound)

	aid2, err := f.NewElement(42, 1, 3)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid2))
}

func TestDeleteNotFound(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	err := f.Delete(1, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEndAccessTwiceFails(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(1, 1, 0)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))
	err = f.EndAccess(aid)
	require.ErrorIs(t, err, ErrArgs)
}

func TestCloseRequiresEveryAccessReleased(t *testing.T) {
	f, _ := openFresh(t)

	aid, err := f.NewElement(1, 1, 0)
	require.NoError(t, err)

	err = f.Close()
	require.ErrorIs(t, err, ErrDenied)

	require.NoError(t, f.EndAccess(aid))
	require.NoError(t, f.Close())
}

func TestWildcardRefLookup(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(55, 7, 0)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))

	aid2, err := f.StartRead(55, 0xFFFF)
	require.NoError(t, err)
	meta, err := f.Inquire(aid2)
	require.NoError(t, err)
	require.Equal(t, uint16(7), meta.Ref)
	require.NoError(t, f.EndAccess(aid2))
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hdf")
	f, err := Open(path, Create)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Corrupt the magic and confirm reopen is rejected.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[0] = 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = Open(path, ReadOnly)
	require.ErrorIs(t, err, ErrBadFile)
}

func TestFDTableRoundTrip(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(1, 1, 0)
	require.NoError(t, err)
	f.RegisterFD(3, aid)

	got, ok := f.ResolveFD(3)
	require.True(t, ok)
	require.Equal(t, aid, got)

	f.ReleaseFD(3)
	_, ok = f.ResolveFD(3)
	require.False(t, ok)

	require.NoError(t, f.EndAccess(aid))
}

func TestWalkReportsSpecialAndRegular(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(10, 1, 4)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))

	caid, err := f.CreateCompressed(20, 1, ModelSTDIO, CoderNone, CoderParams{})
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(caid))

	entries := f.Walk()
	var sawRegular, sawSpecial bool
	for _, e := range entries {
		if e.Tag == 10 && e.Ref == 1 && !e.Special {
			sawRegular = true
		}
		if e.Tag == 20 && e.Ref == 1 && e.Special {
			sawSpecial = true
		}
	}
	require.True(t, sawRegular)
	require.True(t, sawSpecial)
}

func TestStatsTracksAllocationAndLeak(t *testing.T) {
	f, _ := openFresh(t)
	defer f.Close()

	aid, err := f.NewElement(30, 1, 100)
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))

	before := f.Stats()
	require.Greater(t, before.BytesAlloc, uint64(0))
	require.Equal(t, uint64(0), before.BytesLeaked)

	require.NoError(t, f.Delete(30, 1))

	after := f.Stats()
	require.Equal(t, uint64(100), after.BytesLeaked)
	require.NoError(t, f.Validate())
}

// TestReopenContinuesAllocatingPastExistingData is a regression test
// for a bug where reopening a container constructed a fresh allocator
// whose EOF and base address were both the file's current size,
// reporting the whole file as below the allocator's floor. A reopened
// container must keep allocating new elements past whatever was
// already on disk, not reuse or corrupt it.
func TestReopenContinuesAllocatingPastExistingData(t *testing.T) {
	f, path := openFresh(t)
	aid, err := f.NewElement(40, 1, 4)
	require.NoError(t, err)
	_, err = f.Write(aid, []byte("abcd"))
	require.NoError(t, err)
	require.NoError(t, f.EndAccess(aid))
	require.NoError(t, f.Close())

	f2, err := Open(path, ReadWrite)
	require.NoError(t, err)
	defer f2.Close()

	aid2, err := f2.NewElement(41, 1, 3)
	require.NoError(t, err)
	_, err = f2.Write(aid2, []byte("xyz"))
	require.NoError(t, err)
	require.NoError(t, f2.EndAccess(aid2))

	aid3, err := f2.StartRead(40, 1)
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = f2.Read(aid3, 4, buf)
	require.NoError(t, err)
	require.Equal(t, "abcd", string(buf))
	require.NoError(t, f2.EndAccess(aid3))

	require.NoError(t, f2.Validate())
}
