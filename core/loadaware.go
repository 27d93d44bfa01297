package core

import (
	"time"

	"github.com/encodeous/rayon/state"
)

// rtt factor thresholds, milliseconds
const (
	rttThresholdExcellent = 10.0
	rttThresholdGood      = 50.0
	rttThresholdFair      = 100.0
	rttThresholdPoor      = 200.0
)

// load factor thresholds on the coefficient of variation
const (
	loadThresholdStable   = 0.1
	loadThresholdModerate = 0.2
	loadThresholdBusy     = 0.5
)

const (
	timeoutPenalty      = 0.2
	stalePenaltyCeiling = 2.0
	staleAfter          = 60 * time.Second
)

// minLoadSamples is the smallest history the load factor will trust.
const minLoadSamples = 3

// LoadAwareCalculator is the default cost strategy. It scales the base cost
// by a weighted blend of the current round trip, the variability of recent
// round trips, and the neighbour's failure history, clamped to a band around
// the configured cost.
type LoadAwareCalculator struct {
	cfg state.CostModelCfg

	// Adjustments counts completed cost computations (bypasses excluded).
	Adjustments uint64
}

func NewLoadAwareCalculator(cfg state.CostModelCfg) *LoadAwareCalculator {
	return &LoadAwareCalculator{cfg: cfg}
}

func (c *LoadAwareCalculator) AdjustedCost(baseCost float64, metrics LinkMetrics, history *state.LatencyHistory) float64 {
	// no valid signal to adjust against
	if baseCost <= 0 || metrics.OriginalCost <= 0 {
		return baseCost
	}

	rttFactor := c.rttFactor(metrics)
	loadFactor := c.loadFactor(metrics, history)
	stabilityFactor := c.stabilityFactor(metrics)

	adjustmentFactor := c.cfg.RttWeight*rttFactor +
		c.cfg.LoadWeight*loadFactor +
		c.cfg.StabilityWeight*stabilityFactor

	adjusted := baseCost * (1.0 + adjustmentFactor)

	adjusted = min(adjusted, metrics.OriginalCost*c.cfg.ClampMax)
	adjusted = max(adjusted, metrics.OriginalCost*c.cfg.ClampMin)

	c.Adjustments++
	return adjusted
}

func (c *LoadAwareCalculator) rttFactor(metrics LinkMetrics) float64 {
	if metrics.CurrentRtt == nil {
		return 0.0
	}
	rtt := *metrics.CurrentRtt
	switch {
	case rtt <= rttThresholdExcellent:
		return 0.0
	case rtt <= rttThresholdGood:
		return 0.2
	case rtt <= rttThresholdFair:
		return 0.5
	case rtt <= rttThresholdPoor:
		return 1.0
	default:
		return 2.0
	}
}

func (c *LoadAwareCalculator) loadFactor(metrics LinkMetrics, history *state.LatencyHistory) float64 {
	if history == nil {
		return 0.0
	}
	// fold the current sample in first so the factor reflects the freshest
	// data, unless the producer already recorded it
	if metrics.CurrentRtt != nil && !metrics.RttRecorded {
		history.Push(*metrics.CurrentRtt)
	}
	if history.Len() < minLoadSamples {
		return 0.0
	}
	variationRate := history.VariationRate()
	switch {
	case variationRate <= loadThresholdStable:
		return 0.0
	case variationRate <= loadThresholdModerate:
		return 0.3
	case variationRate <= loadThresholdBusy:
		return 0.7
	default:
		return 1.5
	}
}

func (c *LoadAwareCalculator) stabilityFactor(metrics LinkMetrics) float64 {
	factor := 0.0
	if metrics.TimeoutCount != nil {
		factor += float64(*metrics.TimeoutCount) * timeoutPenalty
	}
	if metrics.LastSuccess != nil {
		sinceSuccess := time.Since(*metrics.LastSuccess)
		if sinceSuccess > staleAfter {
			factor += min(stalePenaltyCeiling, sinceSuccess.Seconds()/60.0*0.1)
		}
	}
	return factor
}
