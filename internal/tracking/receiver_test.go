package tracking

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordWith(head, tilt float64) string {
	return fmt.Sprintf("%g,%g,%g,0,0,0,0,0,0,0,0,0,1,%g", head, head, head, tilt)
}

func TestReceiverSnapshotAndSmoothing(t *testing.T) {
	r := NewReceiver()
	_, ok := r.Snapshot()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Handle([]byte(recordWith(1, 30))))
	}
	s, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(5), s.Seq)
	assert.Equal(t, 30.0, s.Tilt)
	assert.Equal(t, 30.0, s.TiltSample)

	require.NoError(t, r.Handle([]byte(recordWith(1, 80))))
	s, _ = r.Snapshot()
	assert.InDelta(t, 40.0, s.Tilt, 1e-12)
}

func TestReceiverSkipsNonFiniteAngles(t *testing.T) {
	r := NewReceiver()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Handle([]byte(recordWith(1, 30))))
	}
	require.NoError(t, r.Handle([]byte(recordWith(2, math.NaN()))))
	s, _ := r.Snapshot()
	assert.Equal(t, 30.0, s.Tilt)
	assert.Equal(t, 2.0, s.Head[0], "the rest of the record is kept")
	assert.True(t, math.IsNaN(s.TiltSample))

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Handle([]byte(recordWith(1, 30))))
		s, _ = r.Snapshot()
		assert.Equal(t, 30.0, s.Tilt)
	}

	require.NoError(t, r.Handle([]byte("1,1,1,Inf,0,0,0,0,0,0,0,0,1,30")))
	s, _ = r.Snapshot()
	assert.False(t, math.IsNaN(s.Roll) || math.IsInf(s.Roll, 0))
	assert.InDelta(t, 0.0, s.Roll, 1e-9)
}

func TestReceiverRollAveragesAcrossSeam(t *testing.T) {
	r := NewReceiver()
	require.NoError(t, r.Handle([]byte("1,1,1,359,0,0,0,0,0,0,0,0,1,0")))
	require.NoError(t, r.Handle([]byte("1,1,1,1,0,0,0,0,0,0,0,0,1,0")))
	s, _ := r.Snapshot()
	assert.InDelta(t, 0.0, s.Roll, 1e-9)
}

func TestReceiverKeyQueue(t *testing.T) {
	r := NewReceiver()
	require.NoError(t, r.Handle([]byte("Q")))
	require.NoError(t, r.Handle([]byte(recordWith(0, 0))))
	require.NoError(t, r.Handle([]byte("S")))

	assert.Equal(t, []KeyCode{KeyButtonOneDown, KeyButtonOneUp}, r.DrainKeys())
	assert.Empty(t, r.DrainKeys())
	assert.Equal(t, Stats{Records: 1, Keys: 2}, r.Stats())
}

func TestReceiverKeepsSnapshotOnMalformed(t *testing.T) {
	r := NewReceiver()
	require.NoError(t, r.Handle([]byte(recordWith(7, 0))))
	assert.ErrorIs(t, r.Handle([]byte("1,2")), ErrMalformedRecord)

	s, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 7.0, s.Head[0])
	assert.Equal(t, uint64(1), r.Stats().Malformed)
}

// Snapshots must never mix fields from two records.
func TestReceiverSnapshotsDoNotTear(t *testing.T) {
	r := NewReceiver()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 2000; i++ {
			r.Handle([]byte(recordWith(float64(i), 0)))
		}
	}()

	for i := 0; i < 2000; i++ {
		s, ok := r.Snapshot()
		if !ok {
			continue
		}
		require.Equal(t, s.Head[0], s.Head[1])
		require.Equal(t, s.Head[0], s.Head[2])
		require.Equal(t, s.Head[0], float64(s.Seq))
	}
	wg.Wait()
}
