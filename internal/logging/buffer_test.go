package logging

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_EvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(Entry{Level: "info", Message: fmt.Sprint(i)})
	}

	got := b.Entries("")
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Message)
	assert.Equal(t, "4", got[2].Message)
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultBufferSize, b.Cap())

	for i := 0; i < DefaultBufferSize+10; i++ {
		b.Append(Entry{Message: fmt.Sprint(i)})
	}
	got := b.Entries("")
	require.Len(t, got, DefaultBufferSize)
	assert.Equal(t, "10", got[0].Message)
}

func TestBuffer_FilterAndClear(t *testing.T) {
	b := NewBuffer(10)
	b.Append(Entry{Level: "error", Message: "a"})
	b.Append(Entry{Level: "warn", Message: "b"})
	b.Append(Entry{Level: "error", Message: "c"})

	errs := b.Entries("error")
	require.Len(t, errs, 2)
	assert.Equal(t, "c", errs[1].Message)

	errs[0].Message = "mutated"
	assert.Equal(t, "a", b.Entries("error")[0].Message, "Entries must return a copy")

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Entries(""))

	b.Append(Entry{Level: "info", Message: "after"})
	assert.Equal(t, "after", b.Entries("")[0].Message)
}

func TestBuffer_Export(t *testing.T) {
	b := NewBuffer(10)
	b.Append(Entry{Level: "error", Message: "API request failed", Context: "API"})

	out, err := b.Export()
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  ")

	var entries []Entry
	require.NoError(t, json.Unmarshal(out, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "API", entries[0].Context)
}
