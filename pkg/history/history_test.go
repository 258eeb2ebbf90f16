package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Zero(t, store.Count())

	record := &Record{
		Kind:           KindSwap,
		OriginChain:    1,
		DestChain:      792703809,
		SentAmount:     "1.5",
		SentSymbol:     "ETH",
		ReceivedAmount: "20",
		ReceivedSymbol: "SOL",
		TxHash:         "0xabc",
		Status:         "success",
	}
	require.NoError(t, store.Add(record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())

	// A fresh store over the same file sees the record.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Count())

	got, err := reopened.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, "ETH", got.SentSymbol)
	assert.Equal(t, KindSwap, got.Kind)
}

func TestListNewestFirst(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	older := &Record{Kind: KindSwap, Status: "success", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Record{Kind: KindTrade, Status: "failed", Error: "refunded"}
	require.NoError(t, store.Add(older))
	require.NoError(t, store.Add(newer))

	records := store.List()
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)

	trades := store.ListByKind(KindTrade)
	require.Len(t, trades, 1)
	assert.Equal(t, "refunded", trades[0].Error)
}

func TestGetMissingRecord(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	_, err = store.Get("nope")
	assert.Error(t, err)
}
