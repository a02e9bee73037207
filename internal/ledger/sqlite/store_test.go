package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	now := time.Now()
	require.NoError(t, store.Insert(ctx, "alice#0001", "a cat", "https://a|https://b", now))
	require.NoError(t, store.Insert(ctx, "bob", "a dog", "https://c", now))
	require.NoError(t, store.Insert(ctx, "alice#0001", "a fox", "", now))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	authors, err := store.Authors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice#0001", "bob", "alice#0001"}, authors)
}

func TestLedgerOnSqlite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "ledger.db")

	l, err := ledger.New(ctx, Connector(dsn), ledger.DefaultCostPerRun)
	require.NoError(t, err)

	for _, author := range []string{"A", "B", "A"} {
		require.NoError(t, l.Record(ctx, ledger.Entry{Author: author, Prompt: "p", ImageURLs: []string{"https://x"}, CreatedAt: time.Now()}))
	}
	require.NoError(t, l.Close())

	// data survives reopening the file
	l, err = ledger.New(ctx, Connector(dsn), ledger.DefaultCostPerRun)
	require.NoError(t, err)
	defer l.Close()

	snapshot, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Runs)
	assert.Equal(t, []ledger.AuthorStats{
		{Author: "A", Runs: 2, Spent: 0.26},
		{Author: "B", Runs: 1, Spent: 0.13},
	}, snapshot.Authors)
}
