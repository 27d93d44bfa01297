package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatencyHistory_PushEvictsOldest(t *testing.T) {
	h := NewLatencyHistory(3)
	h.Push(1)
	h.Push(2)
	h.Push(3)
	h.Push(4)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{2, 3, 4}, h.Samples())
	assert.Equal(t, 4.0, h.Latest())
}

func TestLatencyHistory_Empty(t *testing.T) {
	h := NewLatencyHistory(5)
	assert.Equal(t, 0, h.Len())
	assert.True(t, math.IsNaN(h.Latest()))
	assert.Equal(t, 0.0, h.Mean())
	assert.Equal(t, 0.0, h.StdDev())
	assert.Equal(t, 0.0, h.VariationRate())
}

func TestLatencyHistory_Stats(t *testing.T) {
	h := NewLatencyHistory(10)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		h.Push(v)
	}
	assert.InDelta(t, 5.0, h.Mean(), 1e-9)
	assert.InDelta(t, 2.0, h.StdDev(), 1e-9)
	assert.InDelta(t, 0.4, h.VariationRate(), 1e-9)
}

func TestLatencyHistory_StatsAfterWrap(t *testing.T) {
	h := NewLatencyHistory(4)
	for _, v := range []float64{100, 100, 10, 10, 10, 10} {
		h.Push(v)
	}
	// only the last four samples remain
	assert.Equal(t, []float64{10, 10, 10, 10}, h.Samples())
	assert.InDelta(t, 10.0, h.Mean(), 1e-9)
	assert.InDelta(t, 0.0, h.VariationRate(), 1e-9)
}

func TestLatencyHistory_UniformSamples(t *testing.T) {
	h := NewLatencyHistory(5)
	for range 5 {
		h.Push(25)
	}
	assert.Equal(t, 0.0, h.VariationRate())
}
