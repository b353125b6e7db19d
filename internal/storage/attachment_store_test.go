package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) AttachmentStore {
	store, err := NewLocalAttachmentStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	ref, size, err := store.Store(42, "report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), size)
	assert.True(t, strings.HasPrefix(ref, "42/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"))

	reader, err := store.Retrieve(ref)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestStore_UniqueRefsPerBlob(t *testing.T) {
	store := newTestStore(t)

	ref1, _, err := store.Store(1, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	ref2, _, err := store.Store(1, "a.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
}

func TestRetrieve_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Retrieve("1/missing.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestRetrieve_TraversalRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Retrieve("../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = store.Retrieve("/etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestRemove_MissingBlobIsNoError(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Remove("7/gone.txt"))
}

func TestRemove_DeletesBlob(t *testing.T) {
	store := newTestStore(t)

	ref, _, err := store.Store(3, "note.txt", strings.NewReader("note"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ref))

	_, err = store.Retrieve(ref)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}
