package state

import "math"

// LatencyHistory is a fixed-capacity ring of recent round-trip samples in
// milliseconds. Pushing past capacity evicts the oldest sample.
type LatencyHistory struct {
	samples []float64
	head    int
	n       int
}

func NewLatencyHistory(capacity int) *LatencyHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &LatencyHistory{samples: make([]float64, capacity)}
}

func (h *LatencyHistory) Push(rttMs float64) {
	h.samples[(h.head+h.n)%len(h.samples)] = rttMs
	if h.n < len(h.samples) {
		h.n++
	} else {
		h.head = (h.head + 1) % len(h.samples)
	}
}

func (h *LatencyHistory) Len() int {
	return h.n
}

func (h *LatencyHistory) Cap() int {
	return len(h.samples)
}

// Latest returns the most recent sample, or NaN when empty.
func (h *LatencyHistory) Latest() float64 {
	if h.n == 0 {
		return math.NaN()
	}
	return h.samples[(h.head+h.n-1)%len(h.samples)]
}

// Samples returns the window oldest-first as a copy.
func (h *LatencyHistory) Samples() []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.samples[(h.head+i)%len(h.samples)]
	}
	return out
}

func (h *LatencyHistory) Mean() float64 {
	if h.n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < h.n; i++ {
		sum += h.samples[(h.head+i)%len(h.samples)]
	}
	return sum / float64(h.n)
}

// StdDev is the population standard deviation of the window.
func (h *LatencyHistory) StdDev() float64 {
	if h.n == 0 {
		return 0
	}
	mean := h.Mean()
	variance := 0.0
	for i := 0; i < h.n; i++ {
		d := h.samples[(h.head+i)%len(h.samples)] - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(h.n))
}

// VariationRate is the coefficient of variation (stddev / mean), the load
// signal of the cost model. Zero when the mean is not positive.
func (h *LatencyHistory) VariationRate() float64 {
	mean := h.Mean()
	if mean <= 0 {
		return 0
	}
	return h.StdDev() / mean
}
