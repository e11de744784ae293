package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddIdempotent(t *testing.T) {
	r := newRegistry()
	a := NewAlarm(99, EventEOF)

	require.True(t, r.add(a), "first add should report true")
	require.False(t, r.add(a), "second add of an already-listed alarm should report false")
	require.Equal(t, 1, r.count())
	require.Equal(t, 0, a.listIndex)
}

func TestRegistryRemoveSwapFixesUpIndex(t *testing.T) {
	r := newRegistry()
	a := NewAlarm(1, EventEOF)
	b := NewAlarm(2, EventEOF)
	c := NewAlarm(3, EventEOF)
	r.add(a)
	r.add(b)
	r.add(c)

	require.True(t, r.remove(a), "remove of listed alarm should report true")
	require.False(t, r.remove(a), "second remove of an already-unlisted alarm should report false")
	require.False(t, a.listed())
	require.Equal(t, 2, r.count())
	// c was swapped into a's old slot 0.
	require.Equal(t, 0, c.listIndex)
	require.Same(t, c, r.items[c.listIndex])
}

func TestRegistryCompactDropsDoneAlarms(t *testing.T) {
	r := newRegistry()
	a := NewAlarm(1, EventEOF, Close{FD: 1})
	r.add(a)
	a.curAction = len(a.actions) // mark done

	r.compact()
	require.Equal(t, 0, r.count())
	require.False(t, a.listed())
}

func TestRegistryReAddResetsCursor(t *testing.T) {
	r := newRegistry()
	a := NewAlarm(1, EventEOF, Close{FD: 1})
	r.add(a)
	a.curAction = 0
	r.remove(a)

	r.add(a)
	require.Equal(t, notTriggered, a.curAction)
	require.True(t, a.wakeDeadline.IsZero())
}

func TestRegistryShutdownAllWipesRegardlessOfState(t *testing.T) {
	r := newRegistry()
	a := NewAlarm(1, EventEOF)
	b := NewAlarm(2, EventEOF)
	r.add(a)
	r.add(b)

	r.shutdownAll()
	require.Equal(t, 0, r.count())
	require.False(t, a.listed())
	require.False(t, b.listed())
}
