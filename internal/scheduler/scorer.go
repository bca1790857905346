package scheduler

import (
	"math"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// CognitiveWeights weights the three components of the cognitive tax score.
type CognitiveWeights struct {
	Switches      float64
	Fragmentation float64
	ShortBlocks   float64
}

func defaultCognitiveWeights() CognitiveWeights {
	return CognitiveWeights{
		Switches:      0.6,
		Fragmentation: 0.2,
		ShortBlocks:   0.2,
	}
}

const (
	// fragmentBlockHours is the length below which a block counts as a fragment.
	fragmentBlockHours = 1.0
	// focusBlockHours is the average block length at which the short-block penalty vanishes.
	focusBlockHours = 2.0
)

type TaxBand string

const (
	BandExcellent TaxBand = "Excellent"
	BandGood      TaxBand = "Good"
	BandFair      TaxBand = "Fair"
	BandPoor      TaxBand = "Poor"
)

// CognitiveMetrics summarizes how much context switching a schedule demands.
// Lower scores are better.
type CognitiveMetrics struct {
	CognitiveTaxScore    float64 `json:"cognitive_tax_score"`
	ContextSwitches      int     `json:"context_switches"`
	AverageBlockDuration float64 `json:"average_block_duration"`
	FragmentationScore   float64 `json:"fragmentation_score"`
	Band                 TaxBand `json:"band,omitempty"`
	Interpretation       string  `json:"interpretation,omitempty"`
}

// Rounded returns a copy with display precision applied: three decimals for
// the score and fragmentation, two for the average block duration.
func (m CognitiveMetrics) Rounded() CognitiveMetrics {
	m.CognitiveTaxScore = roundTo(m.CognitiveTaxScore, 3)
	m.AverageBlockDuration = roundTo(m.AverageBlockDuration, 2)
	m.FragmentationScore = roundTo(m.FragmentationScore, 3)
	return m
}

// CognitiveTax scores blocks in the order given. Callers pass blocks ordered
// by start time. An empty schedule scores zero on every component.
func CognitiveTax(blocks []domain.ScheduledBlock) CognitiveMetrics {
	if len(blocks) == 0 {
		return CognitiveMetrics{}
	}
	w := defaultCognitiveWeights()
	n := float64(len(blocks))

	switches := CountContextSwitches(blocks)

	var total float64
	small := 0
	for _, b := range blocks {
		total += b.DurationHours
		if b.DurationHours < fragmentBlockHours {
			small++
		}
	}
	avg := total / n
	fragmentation := float64(small) / n
	shortPenalty := math.Max(0, 1-avg/focusBlockHours)

	score := w.Switches*float64(switches)/n + w.Fragmentation*fragmentation + w.ShortBlocks*shortPenalty
	band := BandFor(score)

	return CognitiveMetrics{
		CognitiveTaxScore:    score,
		ContextSwitches:      switches,
		AverageBlockDuration: avg,
		FragmentationScore:   fragmentation,
		Band:                 band,
		Interpretation:       band.Interpretation(),
	}
}

// CountContextSwitches counts adjacent pairs whose categories differ.
func CountContextSwitches(blocks []domain.ScheduledBlock) int {
	switches := 0
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Category != blocks[i-1].Category {
			switches++
		}
	}
	return switches
}

// SwitchRatio is the legacy weekly-schedule score: switches per block.
func SwitchRatio(blocks []domain.ScheduledBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	return float64(CountContextSwitches(blocks)) / float64(len(blocks))
}

// BandFor maps an unrounded score onto its band.
func BandFor(score float64) TaxBand {
	switch {
	case score < 0.3:
		return BandExcellent
	case score < 0.5:
		return BandGood
	case score < 0.7:
		return BandFair
	default:
		return BandPoor
	}
}

func (b TaxBand) Interpretation() string {
	switch b {
	case BandExcellent:
		return "Excellent - Very low context switching and good focus blocks"
	case BandGood:
		return "Good - Moderate context switching with decent focus time"
	case BandFair:
		return "Fair - Significant context switching, consider regrouping tasks"
	case BandPoor:
		return "Poor - High context switching and fragmentation, needs optimization"
	default:
		return ""
	}
}

// Improvement compares two metrics. Positive values mean candidate is better.
type Improvement struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

func CompareTax(baseline, candidate CognitiveMetrics) Improvement {
	abs := baseline.CognitiveTaxScore - candidate.CognitiveTaxScore
	pct := 0.0
	if baseline.CognitiveTaxScore > 0 {
		pct = abs / baseline.CognitiveTaxScore * 100
	}
	return Improvement{Absolute: roundTo(abs, 3), Percent: roundTo(pct, 1)}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
