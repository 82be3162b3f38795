package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushFrontEvictsOldest(t *testing.T) {
	d := New[int](3)
	for i := 1; i <= 3; i++ {
		_, evicted := d.PushFront(i)
		require.False(t, evicted)
	}
	require.Equal(t, []int{3, 2, 1}, d.Slice())

	old, evicted := d.PushFront(4)
	require.True(t, evicted)
	require.Equal(t, 1, old)
	require.Equal(t, []int{4, 3, 2}, d.Slice())
	require.Equal(t, 3, d.Len())
}

func TestRemoveAt(t *testing.T) {
	d := New[string](4)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		d.PushFront(s)
	}
	require.Equal(t, []string{"e", "d", "c", "b"}, d.Slice())

	idx := d.Index(func(s string) bool { return s == "c" })
	require.Equal(t, 2, idx)
	require.Equal(t, "c", d.RemoveAt(idx))
	require.Equal(t, []string{"e", "d", "b"}, d.Slice())

	d.PushFront("f")
	require.Equal(t, []string{"f", "e", "d", "b"}, d.Slice())
	require.Equal(t, -1, d.Index(func(s string) bool { return s == "zz" }))
}

func TestReplaceTruncatesAndSet(t *testing.T) {
	d := New[int](2)
	d.Replace([]int{9, 8, 7})
	require.Equal(t, []int{9, 8}, d.Slice())

	d.Set(1, 80)
	require.Equal(t, 80, d.At(1))

	d.Clear()
	require.Zero(t, d.Len())
	require.Empty(t, d.Slice())
	require.Panics(t, func() { d.At(0) })
}
