package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_TrimsOldestBeyondCapacity(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < Capacity+10; i++ {
		b.Record(Entry{Kind: "webhook.received", Message: "tick"})
	}

	snap := b.Snapshot()
	require.Len(t, snap, Capacity)
}

func TestRecord_StampsTimestampWhenZero(t *testing.T) {
	b := NewBuffer()
	before := time.Now()
	b.Record(Entry{Kind: "x"})
	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.False(t, snap[0].Timestamp.Before(before))
}

func TestSnapshot_PreservesInsertionOrder(t *testing.T) {
	b := NewBuffer()
	b.Record(Entry{Kind: "a"})
	b.Record(Entry{Kind: "b"})
	b.Record(Entry{Kind: "c"})

	snap := b.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "a", snap[0].Kind)
	assert.Equal(t, "b", snap[1].Kind)
	assert.Equal(t, "c", snap[2].Kind)
}

func TestSnapshot_ReturnsIndependentCopy(t *testing.T) {
	b := NewBuffer()
	b.Record(Entry{Kind: "a"})

	snap := b.Snapshot()
	snap[0].Kind = "mutated"

	again := b.Snapshot()
	assert.Equal(t, "a", again[0].Kind)
}

func TestGlobalRecordAndSnapshot(t *testing.T) {
	before := len(Snapshot())
	Record(Entry{Kind: "webhook.received", Message: "ping"})
	after := Snapshot()
	require.True(t, len(after) >= 1)
	assert.LessOrEqual(t, before+1, len(after)+Capacity) // sanity: never shrinks except by trim
}
