package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konbelyavskyi/docdb/internal/bucketfs"
)

// These mirror the document store's canonical end-to-end scenarios:
// simple CRUD, a bucket split, a rename on smallest-id removal, a
// size-changing update, bulk churn, and persistence across restarts.
// Expressed with testify since they read closer to an assertion-based
// scenario driver than the teacher's bare t.Fatalf style.

func newScenarioEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(bucketfs.NewOSFS(), Config{DataDir: t.TempDir(), Metrics: noopMetrics{}})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestScenarioSimpleCRUD(t *testing.T) {
	e := newScenarioEngine(t)

	require.NoError(t, e.Insert(100, []byte("alpha")))
	assert.True(t, e.Exists(100))

	got, err := e.Get(100)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))

	require.NoError(t, e.Remove(100))
	assert.False(t, e.Exists(100))
}

func TestScenarioBucketSplit(t *testing.T) {
	e := newScenarioEngine(t)

	for i := int64(0); i < 10; i++ {
		require.NoError(t, e.Insert(i, []byte{byte(i)}))
	}
	assert.Equal(t, 1, e.idx.Len())

	require.NoError(t, e.Insert(10, []byte{10}))
	assert.Equal(t, 2, e.idx.Len())

	for i := int64(0); i <= 10; i++ {
		got, err := e.Get(i)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, got)
	}
}

func TestScenarioRenameOnSmallestIDRemoval(t *testing.T) {
	e := newScenarioEngine(t)

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, e.Insert(id, []byte("v")))
	}

	require.NoError(t, e.Remove(1))

	bid, ok := e.idx.OwningBucket(2)
	require.True(t, ok)
	assert.Equal(t, int64(2), bid)
}

func TestScenarioUpdateChangingSize(t *testing.T) {
	e := newScenarioEngine(t)

	require.NoError(t, e.Insert(1, []byte("short")))
	require.NoError(t, e.Update(1, []byte("a much longer replacement payload")))

	got, err := e.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "a much longer replacement payload", string(got))
}

func TestScenarioBulkChurn(t *testing.T) {
	e := newScenarioEngine(t)

	const n = 1000
	for i := int64(0); i < n; i++ {
		require.NoError(t, e.Insert(i, []byte{byte(i)}))
	}
	for i := int64(0); i < n; i += 2 {
		require.NoError(t, e.Remove(i))
	}
	for i := int64(1); i < n; i += 2 {
		assert.True(t, e.Exists(i))
	}
	for i := int64(0); i < n; i += 2 {
		assert.False(t, e.Exists(i))
	}
}

func TestScenarioPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	e1, err := New(bucketfs.NewOSFS(), Config{DataDir: dir})
	require.NoError(t, err)

	for i := int64(0); i < 25; i++ {
		require.NoError(t, e1.Insert(i, []byte{byte(i)}))
	}
	require.NoError(t, e1.Close())

	e2, err := New(bucketfs.NewOSFS(), Config{DataDir: dir})
	require.NoError(t, err)
	defer e2.Close()

	for i := int64(0); i < 25; i++ {
		got, err := e2.Get(i)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, got)
	}
}
